package main

import (
	"fmt"
	"strconv"
	"strings"

	"tmc/internal/config"
	"tmc/internal/course"
	apperrors "tmc/internal/errors"
	"tmc/internal/history"
	"tmc/internal/progress"

	"github.com/spf13/cobra"
)

func newDownloadCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download ID...",
		Short: "Download exercise templates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dir") {
				dir = config.GetString(config.KeyDownloadDir)
			}
			if strings.TrimSpace(dir) == "" {
				dir = "."
			}
			client, err := a.newClient(a.testMode())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, err := track(a, course.DownloadStages, fmt.Sprintf("Downloading %d exercise(s) into %s", len(ids), dir),
				func(rep progress.Reporter) (*course.DownloadResult, error) {
					return client.Download(ctx, ids, dir, rep)
				})
			if err != nil {
				return err
			}

			for i, path := range res.Paths {
				a.record(ctx, history.Entry{Kind: history.KindDownload, ExerciseID: ids[i], URL: path, Status: "ok"})
				_, _ = fmt.Fprintln(a.out, successMsg("%d → %s", ids[i], path))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Target directory (default from download.dir)")
	return cmd
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || id <= 0 {
			return nil, apperrors.New(apperrors.CodeParseFailed, fmt.Sprintf("invalid exercise id %q", arg), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
