package course

import (
	"io"

	"tmc/internal/progress"
)

// progressReader reports how much of a body of known size has been read.
// Fractions are mapped into [base, base+span] so several transfers can share
// one stage. It never reports a finished event.
type progressReader struct {
	r       io.Reader
	total   int64
	read    int64
	base    float64
	span    float64
	message string
	rep     progress.Reporter
	last    int
}

func newProgressReader(r io.Reader, total int64, message string, rep progress.Reporter) *progressReader {
	return &progressReader{r: r, total: total, span: 1, message: message, rep: rep, last: -1}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		frac := float64(p.read) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		// One report per whole percent keeps the reporter quiet on large bodies.
		if whole := int(frac * 100); whole != p.last {
			p.last = whole
			p.rep.Report(progress.StatusUpdate{PercentDone: p.base + frac*p.span, Message: p.message})
		}
	}
	return n, err
}
