package main

import (
	"fmt"
	"path/filepath"

	"tmc/internal/config"
	"tmc/internal/course"
	apperrors "tmc/internal/errors"
	"tmc/internal/history"
	"tmc/internal/progress"

	"github.com/spf13/cobra"
)

func newSubmitCmd(a *app) *cobra.Command {
	var id int
	cmd := &cobra.Command{
		Use:   "submit [exercise-dir]",
		Short: "Submit an exercise for grading and wait for the results",
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
			res, err := track(a, course.SubmitStages, fmt.Sprintf("Submitting %s (id %d)", ex.Label(), ex.ID),
				func(rep progress.Reporter) (*course.SubmissionResult, error) {
					return client.Submit(ctx, ex, rep)
				})
			if err != nil {
				a.record(ctx, history.Entry{Kind: history.KindSubmit, ExerciseID: ex.ID, Status: "error"})
				return err
			}

			a.record(ctx, history.Entry{Kind: history.KindSubmit, ExerciseID: ex.ID, URL: res.ShowURL, Status: res.Status})
			printSubmission(a.out, res, config.GetString(config.KeyOutputFormat))
			return nil
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Exercise id on the server")
	return cmd
}

// resolveExercise builds an Exercise from the --id flag and an optional
// directory argument, defaulting to the working directory.
func resolveExercise(id int, args []string) (course.Exercise, error) {
	if id <= 0 {
		return course.Exercise{}, apperrors.New(apperrors.CodeConfigurationError, "exercise id is required (use --id)", nil)
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return course.Exercise{}, fmt.Errorf("resolve %s: %w", dir, err)
	}
	return course.Exercise{ID: id, Name: filepath.Base(abs), Path: abs}, nil
}
