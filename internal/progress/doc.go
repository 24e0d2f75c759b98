// Package progress reports incremental progress of multi-stage remote
// operations to a background terminal renderer.
//
// A Manager is built for one operation with a known number of stages. The
// operation receives the Manager's Reporter and calls it synchronously as it
// works; each stage emits any number of progress samples followed by exactly
// one finished sample. A renderer goroutine polls the shared state at a fixed
// tick and redraws a single-line widget until every stage has finished.
//
// # Usage
//
//	mgr := progress.NewManager(progress.Options{Stages: 2})
//	if err := mgr.Start(); err != nil {
//	    return err
//	}
//	mgr.Println("Submitting part01-ex01")
//
//	result, err := client.Submit(ctx, exercise, mgr.Reporter())
//	if err != nil {
//	    mgr.ForceJoin()
//	    return err
//	}
//	mgr.Join()
//
// Between Start and Join all terminal output must go through Println; direct
// writes would be overwritten by the next redraw.
//
// # Test mode
//
// When the tracked operation is stubbed, nothing would ever report a finished
// stage. Options.TestMode starts a simulator that reports one finished sample
// per stage, SimulatorDelay apart, so Join returns without a real operation.
package progress
