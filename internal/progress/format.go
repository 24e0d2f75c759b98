package progress

import (
	"fmt"
	"math"
	"time"
)

// clampPercent keeps a reported fraction drawable. Out-of-range values come
// from misbehaving event sources and must not break the renderer.
func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// formatElapsed renders a duration the way the widget shows it: 4s, 1m 05s,
// 1h 02m.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}
