package progress

import (
	"time"

	"tmc/internal/debug"
)

// renderer polls the shared state every interval and repaints the widget.
// Polling instead of reacting to events keeps the spinner and elapsed clock
// moving while an operation is silent.
type renderer struct {
	state    *state
	widget   widget
	interval time.Duration
	started  time.Time
}

func newRenderer(s *state, w widget, interval time.Duration) *renderer {
	return &renderer{
		state:    s,
		widget:   w,
		interval: interval,
	}
}

func (r *renderer) run() {
	r.started = time.Now()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var (
		lastPercent float64
		lastMessage string
		drawn       bool
	)
	for {
		t := r.state.take()

		// Queued lines go out first so they land above the live widget.
		for _, line := range t.lines {
			r.widget.println(line)
		}

		if !drawn || t.percent != lastPercent || t.message != lastMessage {
			r.widget.update(t.percent, t.message)
			lastPercent, lastMessage = t.percent, t.message
		}
		// Widgets skip frames whose visible content has not changed.
		r.widget.draw(time.Since(r.started))
		drawn = true

		if t.done {
			break
		}

		select {
		case <-ticker.C:
		case <-r.state.wake:
		}
	}

	r.widget.finish(time.Since(r.started))
	debug.Logf("progress: renderer stopped after %s (last message %q)", time.Since(r.started).Round(time.Millisecond), lastMessage)
}
