package progress

import (
	"testing"
	"time"
)

func TestStateStageTransitions(t *testing.T) {
	s := newState(2)

	if st := s.snapshot().Stages; st[0].Phase != StagePending || st[1].Phase != StagePending {
		t.Fatalf("new state should start with pending stages, got %+v", st)
	}

	s.apply(StatusUpdate{PercentDone: 0.5, Message: "submitting"})
	snap := s.snapshot()
	if snap.Stages[0].Phase != StageRunning || snap.Stages[0].Percent != 0.5 {
		t.Fatalf("stage 0 should be running at 0.5, got %+v", snap.Stages[0])
	}
	if snap.Completed != 0 {
		t.Fatalf("progress ping must not complete a stage, completed=%d", snap.Completed)
	}

	s.apply(StatusUpdate{PercentDone: 1, Message: "submitted", Finished: true})
	s.apply(StatusUpdate{PercentDone: 0.1, Message: "waiting"})
	snap = s.snapshot()
	if snap.Completed != 1 || snap.Stages[0].Phase != StageDone || snap.Stages[1].Phase != StageRunning {
		t.Fatalf("unexpected state after first stage: %+v", snap)
	}
	if stuck, ok := snap.Stuck(); !ok || stuck.Index != 1 {
		t.Fatalf("expected stage 1 reported as stuck, got %+v ok=%v", stuck, ok)
	}

	s.apply(StatusUpdate{PercentDone: 1, Message: "done", Finished: true})
	snap = s.snapshot()
	if !snap.Done() || snap.Completed != 2 {
		t.Fatalf("expected both stages done, got %+v", snap)
	}
	if _, ok := snap.Stuck(); ok {
		t.Fatal("no stage should be stuck once all are done")
	}
}

func TestStateIgnoresExtraFinishedEvents(t *testing.T) {
	s := newState(1)
	s.apply(StatusUpdate{PercentDone: 1, Message: "done", Finished: true})
	s.apply(StatusUpdate{PercentDone: 1, Message: "again", Finished: true})

	snap := s.snapshot()
	if snap.Completed != 1 || snap.Message != "done" {
		t.Fatalf("extra finished event leaked into state: %+v", snap)
	}
}

func TestStateForceKeepsStagePhases(t *testing.T) {
	s := newState(3)
	s.apply(StatusUpdate{PercentDone: 1, Message: "sent", Finished: true})
	s.force()

	snap := s.snapshot()
	if !snap.Forced || snap.Completed != 3 {
		t.Fatalf("force should complete all stages, got %+v", snap)
	}
	if snap.Stages[1].Phase != StagePending || snap.Stages[2].Phase != StagePending {
		t.Fatalf("force must not rewrite stage phases, got %+v", snap.Stages)
	}

	// Forcing twice is harmless.
	s.force()
	if got := s.snapshot().Completed; got != 3 {
		t.Fatalf("completed = %d after second force, want 3", got)
	}
}

func TestStateCompletionSignalsWake(t *testing.T) {
	s := newState(2)
	s.apply(StatusUpdate{PercentDone: 0.5, Message: "ping"})
	select {
	case <-s.wake:
		t.Fatal("progress ping should not wake the renderer")
	default:
	}

	s.apply(StatusUpdate{PercentDone: 1, Finished: true})
	select {
	case <-s.wake:
	default:
		t.Fatal("stage completion should wake the renderer")
	}

	// The wake channel never blocks the reporter.
	s.signal()
	s.signal()
	s.signal()
}

func TestStateTakeDrainsPendingLines(t *testing.T) {
	s := newState(1)
	s.push("one")
	s.push("two")

	got := s.take()
	if len(got.lines) != 2 || got.lines[0] != "one" || got.lines[1] != "two" {
		t.Fatalf("take returned %q, want [one two]", got.lines)
	}
	if again := s.take(); len(again.lines) != 0 {
		t.Fatalf("lines must be handed out once, got %q", again.lines)
	}

	s.push("three")
	if left := s.close(); len(left) != 1 || left[0] != "three" {
		t.Fatalf("close returned %q, want [three]", left)
	}
	if s.push("four") {
		t.Fatal("push after close should report false")
	}
}

func TestSimulateEmitsExactlyStageCount(t *testing.T) {
	var finished int
	rep := ReporterFunc(func(u StatusUpdate) {
		if u.Finished && u.PercentDone == 1.0 {
			finished++
		}
	})

	simulate(rep, 3, time.Millisecond, make(chan struct{}))
	if finished != 3 {
		t.Fatalf("simulate emitted %d finished events, want 3", finished)
	}
}

func TestSimulateStopsEarly(t *testing.T) {
	stop := make(chan struct{})
	close(stop)

	var calls int
	simulate(ReporterFunc(func(StatusUpdate) { calls++ }), 5, time.Hour, stop)
	if calls != 0 {
		t.Fatalf("simulate reported %d events after stop, want 0", calls)
	}
}

func TestSimulateOverEmissionIsHarmless(t *testing.T) {
	s := newState(1)
	simulate(ReporterFunc(s.apply), 4, time.Millisecond, make(chan struct{}))
	if got := s.snapshot().Completed; got != 1 {
		t.Fatalf("completed = %d after over-emission, want 1", got)
	}
}
