package airband

import (
	"context"
	"time"

	"github.com/airbandrx/airband/pkg/airband/config"
	"github.com/airbandrx/airband/pkg/airband/controls"
	"github.com/airbandrx/airband/pkg/util"
)

const (
	pollInterval = 50 * time.Millisecond

	// potDeadband filters ADC jitter; a pot must move by more than this
	// many raw counts before the reading is treated as operator input.
	potDeadband = 8
)

// pot binds one ADC channel to a bus parameter through a menu entry's
// range.
type pot struct {
	channel int
	view    string
	entry   config.MenuEntry
	lastRaw int
	apply   func(value float64) error
}

// controlLoop polls the front panel: three potentiometers and the record
// button. A pot movement applies the new value and hints the display to
// show the matching parameter view.
func (r *Receiver) controlLoop(ctx context.Context) error {
	pots := r.buildPots()

	// Seed lastRaw so startup positions are not treated as movement.
	if r.analog != nil {
		for i := range pots {
			if raw, err := r.analog.ReadChannel(pots[i].channel); err == nil {
				pots[i].lastRaw = raw
			}
		}
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var events <-chan controls.ButtonEvent
	if r.buttons != nil {
		events = r.buttons.Events()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			r.handleButton(ev)
		case <-ticker.C:
			if r.analog == nil {
				continue
			}
			for i := range pots {
				r.pollPot(&pots[i])
			}
		}
	}
}

func (r *Receiver) buildPots() []pot {
	menu := func(name string, fallback config.MenuEntry) config.MenuEntry {
		for _, e := range r.cfg.Menu {
			if e.Name == name {
				return e
			}
		}
		return fallback
	}

	return []pot{
		{
			channel: r.cfg.Controls.VolumePotChannel,
			view:    "volume",
			entry:   menu("volume", config.MenuEntry{Min: 0, Max: 100}),
			lastRaw: -1,
			apply:   func(v float64) error { return r.bus.SetVolume(int(v)) },
		},
		{
			channel: r.cfg.Controls.GainPotChannel,
			view:    "gain",
			entry:   menu("gain", config.MenuEntry{Min: 0, Max: 50}),
			lastRaw: -1,
			apply:   func(v float64) error { return r.bus.SetGain(int(v)) },
		},
		{
			channel: r.cfg.Controls.SquelchPotChannel,
			view:    "squelch",
			entry:   menu("squelch", config.MenuEntry{Min: -90, Max: 0}),
			lastRaw: -1,
			apply:   func(v float64) error { return r.bus.SetSquelchThreshold(v) },
		},
	}
}

func (r *Receiver) pollPot(p *pot) {
	raw, err := r.analog.ReadChannel(p.channel)
	if err != nil {
		r.logger.Warn().Err(err).Int("channel", p.channel).Msg("reading pot")
		return
	}
	if p.lastRaw >= 0 && abs(raw-p.lastRaw) <= potDeadband {
		return
	}
	p.lastRaw = raw

	value := float64(util.ScaleADC(raw, int(p.entry.Min), int(p.entry.Max)))
	if err := p.apply(value); err != nil {
		r.logger.Warn().Err(err).Str("view", p.view).Msg("applying pot value")
		return
	}
	r.hintView(p.view)
}

func (r *Receiver) handleButton(ev controls.ButtonEvent) {
	if !ev.Pressed {
		return
	}
	switch ev.Button {
	case controls.ButtonRecord:
		if err := r.recorder.Toggle(); err != nil {
			r.logger.Warn().Err(err).Msg("toggling recording")
		}
		r.hintView("main")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
