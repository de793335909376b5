package app

import (
	"context"
	"time"

	"github.com/soocke/plaque-overlay/ui/presenter"
)

const headlessTick = 50 * time.Millisecond

// RunHeadless drives the presenters on a ticker until ctx is cancelled or
// a finite frame source is exhausted and its last result was consumed.
// Capture is started on entry and everything is shut down on return.
func RunHeadless(ctx context.Context, c *AppContainer, view View) error {
	loop, capP := c.Wire(view, nil)
	defer c.Shutdown()
	capP.Enable()
	defer capP.Disable()

	ticker := time.NewTicker(headlessTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if c.Logger != nil {
				c.Logger.Info("headless.stop", "reason", ctx.Err())
			}
			return nil
		case <-ticker.C:
			loop.Tick()
			if c.drained(loop) {
				// One more tick lets the session's last observation reach the view.
				time.Sleep(headlessTick)
				loop.Tick()
				if c.Logger != nil {
					c.Logger.Info("headless.stop", "reason", "source exhausted")
				}
				return nil
			}
		}
	}
}

// drained reports whether capture ran out of frames and the newest frame
// has been accepted by the analyzer, analyzed and its result consumed.
func (c *AppContainer) drained(loop *presenter.Loop) bool {
	if !c.CaptureSvc.Stats().Exhausted {
		return false
	}
	if c.Analyzer.Busy() || len(c.Analyzer.Results()) > 0 {
		return false
	}
	return loop.Tracking.LastSubmitted() >= c.CaptureSvc.LatestFrame().Sequence
}
