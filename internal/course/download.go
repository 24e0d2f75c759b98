package course

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"tmc/internal/debug"
	apperrors "tmc/internal/errors"
	"tmc/internal/progress"
)

// Download fetches each exercise template and extracts it into dir/<id>.
// Byte progress is spread across all exercises and the single stage finishes
// once every archive is extracted.
func (c *HTTPClient) Download(ctx context.Context, ids []int, dir string, rep progress.Reporter) (*DownloadResult, error) {
	rep = reporterOrDiscard(rep)
	defer debug.Timed(fmt.Sprintf("course: download %d exercises", len(ids)))()

	result := &DownloadResult{}
	n := float64(len(ids))
	for i, id := range ids {
		message := fmt.Sprintf("Downloading exercise %d (%d/%d)", id, i+1, len(ids))
		rep.Report(progress.StatusUpdate{PercentDone: float64(i) / n, Message: message})

		data, err := c.fetch(ctx, c.endpoint("/exercises/%d/download", id), func(pr *progressReader) {
			pr.base = float64(i) / n
			pr.span = 1 / n
			pr.message = message
			pr.rep = rep
		})
		if err != nil {
			return nil, err
		}

		dest := filepath.Join(dir, strconv.Itoa(id))
		if err := extractZip(data, dest); err != nil {
			return nil, err
		}
		result.Paths = append(result.Paths, dest)
	}

	rep.Report(progress.StatusUpdate{PercentDone: 1, Message: downloadedMessage(len(ids)), Finished: true})
	return result, nil
}

func (c *HTTPClient) fetch(ctx context.Context, target string, configure func(*progressReader)) ([]byte, error) {
	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	pr := newProgressReader(resp.Body, resp.ContentLength, "", progress.Discard)
	configure(pr)
	data, err := io.ReadAll(pr)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeRemoteFailed, "read "+target, err)
	}
	return data, nil
}

func downloadedMessage(n int) string {
	switch n {
	case 0:
		return "Nothing to download"
	case 1:
		return "Downloaded 1 exercise"
	default:
		return fmt.Sprintf("Downloaded %d exercises", n)
	}
}
