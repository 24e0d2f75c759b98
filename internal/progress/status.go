package progress

import (
	"fmt"
	"strings"
)

// StatusUpdate is one progress sample for the current stage. PercentDone is
// relative to that stage and is expected to lie in [0, 1].
type StatusUpdate struct {
	PercentDone float64
	Message     string
	Finished    bool
}

// Reporter receives status updates from a tracked operation. Implementations
// must not block.
type Reporter interface {
	Report(StatusUpdate)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(StatusUpdate)

// Report implements Reporter.
func (f ReporterFunc) Report(u StatusUpdate) {
	if f == nil {
		return
	}
	f(u)
}

// Discard is a Reporter that drops every update.
var Discard Reporter = ReporterFunc(func(StatusUpdate) {})

// Style selects how the live widget is drawn on a terminal.
type Style int

const (
	// StyleBar draws elapsed time, a progress bar, the stage percentage and
	// the current message.
	StyleBar Style = iota
	// StyleSpinner draws a spinner, the current message and elapsed time.
	StyleSpinner
)

func (s Style) String() string {
	switch s {
	case StyleSpinner:
		return "spinner"
	default:
		return "bar"
	}
}

// ParseStyle maps a config value to a Style. Empty selects StyleBar.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bar":
		return StyleBar, nil
	case "spinner":
		return StyleSpinner, nil
	default:
		return StyleBar, fmt.Errorf("unknown progress style %q", name)
	}
}

// Mode controls whether the widget uses terminal control sequences.
type Mode int

const (
	// ModeAuto redraws in place when the output is a terminal and falls back
	// to plain lines otherwise.
	ModeAuto Mode = iota
	// ModeInteractive always redraws in place.
	ModeInteractive
	// ModePlain writes one line per message change and never redraws.
	ModePlain
)
