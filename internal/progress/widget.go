package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"

	"tmc/internal/debug"
)

// widget is the output primitive owned by the renderer. update changes the
// model, draw repaints the live line, println persists a line above it and
// finish leaves the final state in scroll-back.
type widget interface {
	update(percent float64, message string)
	draw(elapsed time.Duration)
	println(line string)
	finish(elapsed time.Duration)
}

const (
	defaultBarWidth = 30
	minBarWidth     = 10
	maxBarWidth     = 40
	ellipsis        = "…"
)

var (
	accentColor = lipgloss.Color("#7D56F4")
	spinColor   = lipgloss.Color("#FF79C6")
	dimColor    = lipgloss.Color("#6272A4")
	doneColor   = lipgloss.Color("#50FA7B")

	elapsedStyle = lipgloss.NewStyle().Foreground(dimColor)
	percentStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(spinColor)
	doneStyle    = lipgloss.NewStyle().Foreground(doneColor)
)

// sampleMsg carries the latest aggregate into the program.
type sampleMsg struct {
	percent float64
	message string
}

// frameMsg advances the clock and, for the spinner, the animation.
type frameMsg struct {
	elapsed time.Duration
}

// finalMsg paints the completed line and stops the program.
type finalMsg struct {
	elapsed time.Duration
}

// widgetModel is the bubbletea model behind termWidget. It is only touched
// by the program's event loop.
type widgetModel struct {
	style Style
	width func() int
	cols  int
	bar   progress.Model
	spin  spinner.Model

	percent float64
	message string
	elapsed time.Duration
	final   bool
}

func newWidgetModel(style Style, width func() int) *widgetModel {
	if width == nil {
		width = func() int { return 0 }
	}
	return &widgetModel{
		style: style,
		width: width,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(defaultBarWidth),
			progress.WithoutPercentage(),
		),
		spin: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(spinnerStyle),
		),
	}
}

func (m *widgetModel) Init() tea.Cmd {
	return nil
}

func (m *widgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sampleMsg:
		m.percent = clampPercent(msg.percent)
		m.message = msg.message
	case frameMsg:
		m.elapsed = msg.elapsed
		if m.style == StyleSpinner {
			m.spin, _ = m.spin.Update(m.spin.Tick())
		}
	case finalMsg:
		m.elapsed = msg.elapsed
		m.final = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.cols = msg.Width
	}
	return m, nil
}

// View ends with a newline so the line survives the renderer's final erase.
func (m *widgetModel) View() string {
	return m.line() + "\n"
}

func (m *widgetModel) line() string {
	cols := m.cols
	if cols <= 0 {
		cols = m.width()
	}
	clock := elapsedStyle.Render("[" + formatElapsed(m.elapsed) + "]")

	var prefix string
	switch m.style {
	case StyleSpinner:
		icon := m.spin.View()
		if m.final {
			icon = doneStyle.Render("✓")
		}
		prefix = icon + " " + clock
	default:
		m.bar.Width = barWidth(cols)
		pct := percentStyle.Render(fmt.Sprintf("%3.0f%%", m.percent*100))
		prefix = clock + " " + m.bar.ViewAs(m.percent) + " " + pct
	}

	message := m.message
	if cols > 0 {
		room := cols - ansi.StringWidth(prefix) - 1
		if room < 0 {
			room = 0
		}
		message = truncate.StringWithTail(message, uint(room), ellipsis)
	}

	line := prefix
	if message != "" {
		line += " " + message
	}
	if cols > 0 {
		line = ansi.Truncate(line, cols, "")
	}
	return line
}

// termWidget drives a bubbletea program from the renderer goroutine. The
// program is started on first use and owns the terminal until finish.
type termWidget struct {
	out     io.Writer
	style   Style
	model   *widgetModel
	program *tea.Program

	exited chan struct{}
	runErr error

	mu       sync.Mutex
	running  bool
	finished bool
	second   int64
}

func newTermWidget(out io.Writer, style Style, width func() int) *termWidget {
	model := newWidgetModel(style, width)
	return &termWidget{
		out:   out,
		style: style,
		model: model,
		program: tea.NewProgram(model,
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
			tea.WithoutBracketedPaste(),
		),
		exited: make(chan struct{}),
		second: -1,
	}
}

func (w *termWidget) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.finished {
		return
	}
	w.running = true
	go func() {
		defer close(w.exited)
		if _, err := w.program.Run(); err != nil {
			w.runErr = err
			debug.Logf("progress: terminal widget stopped: %v", err)
		}
	}()
}

func (w *termWidget) update(percent float64, message string) {
	w.start()
	w.program.Send(sampleMsg{percent: percent, message: message})
}

func (w *termWidget) draw(elapsed time.Duration) {
	if !w.tickDue(elapsed) {
		return
	}
	w.start()
	w.program.Send(frameMsg{elapsed: elapsed})
}

// tickDue reports whether a frame should be sent. The bar only changes with
// the displayed second; the spinner animates on every tick.
func (w *termWidget) tickDue(elapsed time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.style == StyleSpinner {
		return true
	}
	sec := int64(elapsed / time.Second)
	if sec == w.second {
		return false
	}
	w.second = sec
	return true
}

// println hands the line to the program while it runs and writes it
// directly before the first frame or after finish.
func (w *termWidget) println(line string) {
	w.mu.Lock()
	live := w.running && !w.finished
	w.mu.Unlock()
	if !live {
		_, _ = fmt.Fprintln(w.out, line)
		return
	}
	w.program.Send(tea.Println(line)())
}

func (w *termWidget) finish(elapsed time.Duration) {
	w.start()
	w.program.Send(finalMsg{elapsed: elapsed})
	<-w.exited

	w.mu.Lock()
	w.running = false
	w.finished = true
	w.mu.Unlock()

	if w.runErr != nil {
		_, _ = fmt.Fprintln(w.out, w.model.line())
	}
}

func barWidth(cols int) int {
	if cols <= 0 {
		return defaultBarWidth
	}
	w := cols / 3
	if w < minBarWidth {
		w = minBarWidth
	}
	if w > maxBarWidth {
		w = maxBarWidth
	}
	return w
}

// lineWidget is used when output is not a terminal: it writes one plain line
// whenever the message changes and never emits control sequences.
type lineWidget struct {
	mu      sync.Mutex
	out     io.Writer
	percent float64
	message string
	printed string
	dirty   bool
}

func newLineWidget(out io.Writer) *lineWidget {
	return &lineWidget{out: out}
}

func (w *lineWidget) update(percent float64, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.percent = clampPercent(percent)
	w.message = message
	w.dirty = strings.TrimSpace(message) != "" && message != w.printed
}

func (w *lineWidget) draw(time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
}

func (w *lineWidget) println(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.out, line)
}

func (w *lineWidget) finish(elapsed time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
}

// flush writes the pending message line. Caller must hold w.mu.
func (w *lineWidget) flush() {
	if !w.dirty {
		return
	}
	_, _ = fmt.Fprintf(w.out, "[%3.0f%%] %s\n", w.percent*100, w.message)
	w.printed = w.message
	w.dirty = false
}

// fdWriter is satisfied by *os.File.
type fdWriter interface {
	Fd() uintptr
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns a lookup for the column count of out, or nil when out
// is not a terminal.
func terminalWidth(out io.Writer) func() int {
	f, ok := out.(fdWriter)
	if !ok {
		return nil
	}
	fd := int(f.Fd())
	return func() int {
		cols, _, err := term.GetSize(fd)
		if err != nil {
			return 0
		}
		return cols
	}
}
