package main

import (
	"fmt"

	"tmc/internal/course"
	"tmc/internal/debug"
	"tmc/internal/history"
	"tmc/internal/progress"

	"github.com/spf13/cobra"
)

func newPasteCmd(a *app) *cobra.Command {
	var (
		id      int
		message string
		copyURL bool
	)
	cmd := &cobra.Command{
		Use:   "paste [exercise-dir]",
		Short: "Share an exercise with course staff as a paste",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := resolveExercise(id, args)
			if err != nil {
				return err
			}
			client, err := a.newClient(a.testMode())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, err := track(a, course.PasteStages, fmt.Sprintf("Creating paste for %s", ex.Label()),
				func(rep progress.Reporter) (*course.PasteResult, error) {
					return client.Paste(ctx, ex, message, rep)
				})
			if err != nil {
				a.record(ctx, history.Entry{Kind: history.KindPaste, ExerciseID: ex.ID, Status: "error"})
				return err
			}
			a.record(ctx, history.Entry{Kind: history.KindPaste, ExerciseID: ex.ID, URL: res.PasteURL, Status: "ok"})

			_, _ = fmt.Fprintln(a.out, successMsg("Paste created: %s", res.PasteURL))
			if copyURL {
				if err := a.copyToClipboard(res.PasteURL); err != nil {
					debug.Logf("paste: clipboard: %v", err)
					_, _ = fmt.Fprintln(a.out, warnMsg("Could not copy to clipboard: %v", err))
				} else {
					_, _ = fmt.Fprintln(a.out, mutedStyle.Render("Copied to clipboard"))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Exercise id on the server")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message shown to course staff with the paste")
	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the paste url to the clipboard")
	return cmd
}
