package airband

import (
	"context"
	"time"

	"github.com/airbandrx/airband/pkg/airband/display"
	"github.com/airbandrx/airband/pkg/airband/recording"
)

const renderInterval = 100 * time.Millisecond

// displayLoop owns the screen and the record LED. It consumes view hints
// from the other loops, ages the parameter-view countdown, and renders a
// snapshot. Rendering never happens from the signal path.
func (r *Receiver) displayLoop(ctx context.Context) error {
	machine := display.NewMachine(r.cfg.Display.ViewTimeout)
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.buttons != nil {
				r.buttons.SetRecordLED(false)
			}
			return ctx.Err()
		case <-ticker.C:
		}

		now := time.Now()
		for drained := false; !drained; {
			select {
			case view := <-r.viewHints:
				machine.Touch(view, now)
			default:
				drained = true
			}
		}

		view := machine.Advance(now)
		r.bus.SetView(view)

		if err := r.renderer.Render(view, r.bus.Snapshot()); err != nil {
			r.logger.Warn().Err(err).Msg("rendering display")
		}

		if r.buttons != nil {
			r.buttons.SetRecordLED(recordLED(r.recorder, now))
		}
	}
}

// recordLED is solid for a manual recording and blinks at 1 Hz for a
// VOX-triggered one, so the operator can tell them apart at a glance.
func recordLED(rec *recording.Manager, now time.Time) bool {
	trigger, active := rec.Active()
	if !active {
		return false
	}
	if trigger == recording.TriggerManual {
		return true
	}
	return now.UnixMilli()/500%2 == 0
}
