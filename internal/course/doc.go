// Package course talks to the exercise server: it uploads exercise
// submissions, polls for grading results, creates pastes, and downloads
// exercise templates.
//
// Every operation takes a progress.Reporter and emits a fixed number of
// finished events, one per stage, so callers can size a progress.Manager
// with the matching stage constant:
//
//	mgr := progress.NewManager(progress.Options{Stages: course.SubmitStages})
//	_ = mgr.Start()
//	res, err := client.Submit(ctx, ex, mgr.Reporter())
//	if err != nil {
//		mgr.ForceJoin()
//		return err
//	}
//	mgr.Join()
//
// StubClient emits no events at all; pair it with a manager in test mode.
package course
