package course

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"tmc/internal/debug"
	apperrors "tmc/internal/errors"
	"tmc/internal/progress"
)

// Submit uploads the exercise and waits for grading. Stage one covers the
// upload, stage two the polling.
func (c *HTTPClient) Submit(ctx context.Context, ex Exercise, rep progress.Reporter) (*SubmissionResult, error) {
	rep = reporterOrDiscard(rep)
	defer debug.Timed("course: submit " + ex.Label())()

	created, err := c.upload(ctx, ex, nil, "Uploading "+ex.Label(), rep)
	if err != nil {
		return nil, err
	}
	rep.Report(progress.StatusUpdate{PercentDone: 1, Message: "Submission received", Finished: true})

	result, err := c.waitForResult(ctx, created.SubmissionURL, rep)
	if err != nil {
		return nil, err
	}
	result.SubmissionURL = created.SubmissionURL
	result.ShowURL = created.ShowSubmissionURL
	rep.Report(progress.StatusUpdate{PercentDone: 1, Message: "Results received", Finished: true})
	return result, nil
}

// Paste uploads the exercise as a paste visible to course staff.
func (c *HTTPClient) Paste(ctx context.Context, ex Exercise, message string, rep progress.Reporter) (*PasteResult, error) {
	rep = reporterOrDiscard(rep)
	defer debug.Timed("course: paste " + ex.Label())()

	fields := map[string]string{"paste": "1"}
	if message != "" {
		fields["message_for_paste"] = message
	}
	created, err := c.upload(ctx, ex, fields, "Creating paste for "+ex.Label(), rep)
	if err != nil {
		return nil, err
	}
	if created.PasteURL == "" {
		return nil, apperrors.New(apperrors.CodeRemoteFailed, "server did not return a paste url", nil)
	}
	rep.Report(progress.StatusUpdate{PercentDone: 1, Message: "Paste created", Finished: true})
	return &PasteResult{PasteURL: created.PasteURL, SubmissionURL: created.SubmissionURL}, nil
}

// upload zips the exercise and posts it as a multipart submission. It is not
// retried since the server creates a submission per request.
func (c *HTTPClient) upload(ctx context.Context, ex Exercise, fields map[string]string, message string, rep progress.Reporter) (*submissionCreated, error) {
	archive, err := zipDir(ex.Path)
	if err != nil {
		return nil, err
	}
	rep.Report(progress.StatusUpdate{PercentDone: 0, Message: message})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile("submission[file]", "submission.zip")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(archive); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish form: %w", err)
	}

	size := int64(body.Len())
	target := c.endpoint("/exercises/%d/submissions", ex.ID)
	req, err := c.newRequest(ctx, http.MethodPost, target, newProgressReader(&body, size, message, rep))
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", mw.FormDataContentType())

	debug.Logf("course: POST %s (%d bytes)", target, size)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeRemoteFailed, "upload "+ex.Label(), err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created submissionCreated
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, apperrors.New(apperrors.CodeParseFailed, "decode submission response", err)
	}
	return &created, nil
}

// waitForResult polls submissionURL until grading leaves the processing
// state, reporting each poll.
func (c *HTTPClient) waitForResult(ctx context.Context, submissionURL string, rep progress.Reporter) (*SubmissionResult, error) {
	if submissionURL == "" {
		return nil, apperrors.New(apperrors.CodeRemoteFailed, "server did not return a submission url", nil)
	}
	for poll := 1; ; poll++ {
		var res SubmissionResult
		if err := c.getJSON(ctx, submissionURL, &res); err != nil {
			return nil, err
		}
		if res.Status != StatusProcessing {
			debug.Logf("course: submission graded after %d polls: status=%s", poll, res.Status)
			return &res, nil
		}
		rep.Report(progress.StatusUpdate{
			PercentDone: sandboxPercent(res.SandboxStatus),
			Message:     waitingMessage(res.SandboxStatus),
		})
		if err := sleep(ctx, c.opts.PollInterval); err != nil {
			return nil, err
		}
	}
}

func sandboxPercent(status string) float64 {
	switch status {
	case "created":
		return 0.1
	case "sending_to_sandbox":
		return 0.3
	case "processing_on_sandbox":
		return 0.6
	default:
		return 0
	}
}

func waitingMessage(status string) string {
	switch status {
	case "created":
		return "Waiting for a sandbox"
	case "sending_to_sandbox":
		return "Sending to sandbox"
	case "processing_on_sandbox":
		return "Running tests"
	default:
		return "Waiting for results"
	}
}
