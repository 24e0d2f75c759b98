package progress

import (
	"sync"

	"tmc/internal/debug"
)

// StagePhase is the lifecycle position of one stage.
type StagePhase int

const (
	StagePending StagePhase = iota
	StageRunning
	StageDone
)

func (p StagePhase) String() string {
	switch p {
	case StageRunning:
		return "running"
	case StageDone:
		return "done"
	default:
		return "pending"
	}
}

// StageStatus describes one stage of a tracked operation.
type StageStatus struct {
	Index   int
	Phase   StagePhase
	Percent float64
	Message string
}

// Snapshot is a point-in-time copy of a Manager's shared state.
type Snapshot struct {
	Percent   float64
	Message   string
	Completed int
	Expected  int
	Forced    bool
	Stages    []StageStatus
}

// Done reports whether every expected stage has been accounted for.
func (s Snapshot) Done() bool {
	return s.Completed >= s.Expected
}

// Stuck returns the first stage that has not finished. After a forced join
// this names the stage the operation failed in.
func (s Snapshot) Stuck() (StageStatus, bool) {
	for _, st := range s.Stages {
		if st.Phase != StageDone {
			return st, true
		}
	}
	return StageStatus{}, false
}

// state is shared between the reporter (caller goroutine) and the renderer.
// A single mutex guards every field and is never held while writing to the
// terminal.
type state struct {
	mu        sync.Mutex
	percent   float64
	message   string
	pending   []string
	completed int
	expected  int
	forced    bool
	closed    bool
	stages    []StageStatus

	// wake nudges the renderer out of its tick wait when a stage completes.
	wake chan struct{}
}

func newState(expected int) *state {
	if expected < 1 {
		expected = 1
	}
	stages := make([]StageStatus, expected)
	for i := range stages {
		stages[i].Index = i
	}
	return &state{
		expected: expected,
		stages:   stages,
		wake:     make(chan struct{}, 1),
	}
}

// apply records one status update. It never blocks.
func (s *state) apply(u StatusUpdate) {
	s.mu.Lock()
	if s.completed >= s.expected {
		forced := s.forced
		s.mu.Unlock()
		if !forced {
			debug.Logf("progress: ignoring update after all stages finished: %+v", u)
		}
		return
	}

	s.percent = u.PercentDone
	s.message = u.Message

	st := &s.stages[s.completed]
	st.Percent = u.PercentDone
	st.Message = u.Message
	if !u.Finished {
		st.Phase = StageRunning
		s.mu.Unlock()
		return
	}

	st.Phase = StageDone
	s.completed++
	completed, expected := s.completed, s.expected
	s.mu.Unlock()

	debug.Logf("progress: stage %d/%d finished", completed, expected)
	s.signal()
}

// force marks every stage as accounted for without touching the per-stage
// phases, so Snapshot.Stuck still reports where the operation stopped.
func (s *state) force() {
	s.mu.Lock()
	was, expected := s.completed, s.expected
	if was < expected {
		s.forced = true
		s.completed = expected
	}
	s.mu.Unlock()

	if was < expected {
		debug.Logf("progress: forcing completion at stage %d/%d", was, expected)
	}
	s.signal()
}

func (s *state) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// push queues a line for the renderer. It reports false once the state has
// been closed, in which case the caller owns writing the line.
func (s *state) push(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.pending = append(s.pending, line)
	return true
}

// tick is what the renderer sees on one pass: the current sample, any queued
// lines (removed from the queue) and whether it should stop.
type tick struct {
	percent float64
	message string
	lines   []string
	done    bool
}

func (s *state) take() tick {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := tick{
		percent: s.percent,
		message: s.message,
		lines:   s.pending,
		done:    s.completed >= s.expected,
	}
	s.pending = nil
	return t
}

// close stops queueing and returns whatever was left unflushed.
func (s *state) close() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	lines := s.pending
	s.pending = nil
	return lines
}

func (s *state) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	stages := make([]StageStatus, len(s.stages))
	copy(stages, s.stages)
	return Snapshot{
		Percent:   s.percent,
		Message:   s.message,
		Completed: s.completed,
		Expected:  s.expected,
		Forced:    s.forced,
		Stages:    stages,
	}
}
