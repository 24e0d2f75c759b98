package main

import (
	"context"
	"io"
	"strings"

	"tmc/internal/config"
	"tmc/internal/course"
	"tmc/internal/debug"
	apperrors "tmc/internal/errors"
	"tmc/internal/history"
	"tmc/internal/progress"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// app carries per-invocation state shared by every command. Tests swap the
// factories for fakes.
type app struct {
	out    io.Writer
	errOut io.Writer

	flags struct {
		debug         bool
		testMode      bool
		noInteraction bool
	}
	interactive bool

	newClient       func(testMode bool) (course.Client, error)
	openHistory     func(ctx context.Context) (*history.Store, error)
	copyToClipboard func(string) error
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:             out,
		errOut:          errOut,
		newClient:       defaultClient,
		openHistory:     defaultOpenHistory,
		copyToClipboard: clipboard.WriteAll,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tmc",
		Short:         "Submit, paste and download programming exercises",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			debug.Close()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().BoolVar(&a.flags.debug, "debug", false, "Write a debug log to ~/.tmc/debug.log")
	root.PersistentFlags().BoolVar(&a.flags.testMode, "test-mode", false, "Simulate progress and use canned server responses")
	root.PersistentFlags().BoolVar(&a.flags.noInteraction, "no-interaction", false, "Plain line output, no live progress widget")

	root.AddCommand(newSubmitCmd(a))
	root.AddCommand(newDownloadCmd(a))
	root.AddCommand(newPasteCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return apperrors.New(apperrors.CodeConfigurationError, "load configuration", err)
	}
	overrides := map[string]any{}
	if cmd.Flags().Changed("test-mode") {
		overrides[config.KeyTestMode] = a.flags.testMode
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		return apperrors.New(apperrors.CodeConfigurationError, "apply flags", err)
	}

	var opts []debug.Option
	if p := strings.TrimSpace(config.GetString(config.KeyDebugLogPath)); p != "" {
		opts = append(opts, debug.WithPath(p))
	}
	if err := debug.Init(a.flags.debug, opts...); err != nil {
		return err
	}

	a.interactive = configureInteraction(a.flags.noInteraction, a.errOut)
	debug.Logf("cmd: %s interactive=%v test_mode=%v", cmd.CommandPath(), a.interactive, a.testMode())
	return nil
}

func (a *app) testMode() bool {
	return config.GetBool(config.KeyTestMode)
}

func defaultClient(testMode bool) (course.Client, error) {
	if testMode {
		return course.StubClient{}, nil
	}
	c, err := course.NewHTTPClient(course.Options{
		BaseURL:      config.GetString(config.KeyServerURL),
		Token:        config.GetString(config.KeyAuthToken),
		PollInterval: config.GetDuration(config.KeySubmissionPollInterval, config.DefaultPollInterval),
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func defaultOpenHistory(ctx context.Context) (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(ctx, path)
}

// record appends to the local history. Failures are logged, never fatal.
func (a *app) record(ctx context.Context, e history.Entry) {
	store, err := a.openHistory(ctx)
	if err != nil {
		debug.Logf("history: open: %v", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(ctx, e); err != nil {
		debug.Logf("history: record %s: %v", e.Kind, err)
	}
}

func (a *app) newManager(stages int) (*progress.Manager, error) {
	style, err := progress.ParseStyle(config.GetString(config.KeyProgressStyle))
	if err != nil {
		return nil, apperrors.New(apperrors.CodeConfigurationError, "invalid "+config.KeyProgressStyle, err)
	}
	mode := progress.ModePlain
	if a.interactive {
		mode = progress.ModeInteractive
	}
	return progress.NewManager(progress.Options{
		Stages:         stages,
		Style:          style,
		TestMode:       a.testMode(),
		Output:         a.errOut,
		Mode:           mode,
		TickInterval:   config.GetDuration(config.KeyProgressTickInterval, progress.DefaultTickInterval),
		SimulatorDelay: config.GetDuration(config.KeyProgressSimulatorDelay, progress.DefaultSimulatorDelay),
	}), nil
}

// track runs op under a progress manager sized for stages. intro is printed
// above the widget. A failed op force-joins so the widget never hangs.
func track[T any](a *app, stages int, intro string, op func(progress.Reporter) (T, error)) (T, error) {
	var zero T
	mgr, err := a.newManager(stages)
	if err != nil {
		return zero, err
	}
	mgr.Println(intro)
	if err := mgr.Start(); err != nil {
		return zero, err
	}

	res, err := op(mgr.Reporter())
	if err != nil {
		mgr.ForceJoin()
		if stuck, ok := mgr.Snapshot().Stuck(); ok {
			debug.Logf("cmd: failed in stage %d/%d (%s): %v", stuck.Index+1, stages, stuck.Phase, err)
		}
		return zero, err
	}
	mgr.Join()
	return res, nil
}
