package progress

import "time"

// simulatedMessage is shown for stages completed by the test-mode simulator.
const simulatedMessage = "done"

// simulate stands in for a stubbed operation: it reports one finished sample
// per stage, delay apart, so the renderer terminates the same way it does in
// production. It returns early once stop is closed.
func simulate(r Reporter, stages int, delay time.Duration, stop <-chan struct{}) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for i := 0; i < stages; i++ {
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		r.Report(StatusUpdate{PercentDone: 1.0, Message: simulatedMessage, Finished: true})
		timer.Reset(delay)
	}
}
