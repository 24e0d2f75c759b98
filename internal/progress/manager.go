package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"tmc/internal/debug"
	apperrors "tmc/internal/errors"
)

const (
	// DefaultTickInterval is the renderer redraw period (about 15 Hz).
	DefaultTickInterval = 66 * time.Millisecond
	// DefaultSimulatorDelay separates synthetic stage completions in test mode.
	DefaultSimulatorDelay = 50 * time.Millisecond
)

// Options configures a Manager.
type Options struct {
	// Stages is the number of finished samples the tracked operation emits.
	// Values below 1 are treated as 1.
	Stages int

	// Style selects the terminal widget.
	Style Style

	// TestMode starts the simulator instead of waiting for a real operation.
	TestMode bool

	// Output receives the widget and every Println line.
	// Default: os.Stderr
	Output io.Writer

	// Mode overrides terminal detection.
	// Default: ModeAuto
	Mode Mode

	// Width returns the terminal column count, or 0 when unknown. Messages
	// are only truncated when it is known.
	// Default: read from Output
	Width func() int

	// TickInterval is the redraw period.
	// Default: 66ms
	TickInterval time.Duration

	// SimulatorDelay is the gap between synthetic completions in test mode.
	// Default: 50ms
	SimulatorDelay time.Duration
}

// Manager ties one tracked operation to one renderer goroutine.
type Manager struct {
	opts   Options
	state  *state
	widget widget

	mu      sync.Mutex
	started bool
	joined  bool

	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager allocates the shared state for an operation. No goroutines are
// started until Start.
func NewManager(opts Options) *Manager {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.SimulatorDelay <= 0 {
		opts.SimulatorDelay = DefaultSimulatorDelay
	}
	if opts.Width == nil {
		opts.Width = terminalWidth(opts.Output)
	}

	s := newState(opts.Stages)
	opts.Stages = s.expected

	return &Manager{
		opts:   opts,
		state:  s,
		widget: newWidget(opts),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

func newWidget(opts Options) widget {
	interactive := false
	switch opts.Mode {
	case ModeInteractive:
		interactive = true
	case ModeAuto:
		interactive = isTerminal(opts.Output)
	}
	if interactive {
		return newTermWidget(opts.Output, opts.Style, opts.Width)
	}
	return newLineWidget(opts.Output)
}

// Reporter returns the callback the tracked operation reports through.
func (m *Manager) Reporter() Reporter {
	return ReporterFunc(m.state.apply)
}

// Start spawns the renderer and, in test mode, the simulator. It may be
// called once, and not after Join.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return apperrors.New(apperrors.CodeAlreadyStarted, "progress manager already started", nil)
	}
	if m.joined {
		return apperrors.New(apperrors.CodeAlreadyStarted, "progress manager already joined", nil)
	}
	m.started = true

	debug.Logf("progress: start stages=%d style=%s test_mode=%v", m.opts.Stages, m.opts.Style, m.opts.TestMode)

	r := newRenderer(m.state, m.widget, m.opts.TickInterval)
	go func() {
		defer close(m.done)
		r.run()
	}()

	if m.opts.TestMode {
		go simulate(m.Reporter(), m.opts.Stages, m.opts.SimulatorDelay, m.stop)
	}
	return nil
}

// Println queues message to be printed above the live widget. Messages keep
// their order and are printed exactly once. After Join returns, messages are
// written directly.
func (m *Manager) Println(message string) {
	if !m.state.push(message) {
		m.widget.println(message)
	}
}

// Join blocks until the renderer has seen every stage finish and exited.
// There is no timeout: an operation that fails before finishing all of its
// stages must be followed by ForceJoin instead.
func (m *Manager) Join() {
	m.mu.Lock()
	started := m.started
	m.joined = true
	m.mu.Unlock()

	if started {
		<-m.done
	}
	m.stopOnce.Do(func() { close(m.stop) })

	for _, line := range m.state.close() {
		m.widget.println(line)
	}
}

// ForceJoin treats every stage as finished and then joins. Use it when the
// tracked operation returned an error.
func (m *Manager) ForceJoin() {
	m.state.force()
	m.Join()
}

// Snapshot returns a copy of the shared state.
func (m *Manager) Snapshot() Snapshot {
	return m.state.snapshot()
}

// Stages returns the per-stage status, in order.
func (m *Manager) Stages() []StageStatus {
	return m.state.snapshot().Stages
}
