package squelch

import (
	"time"
)

// State is the squelch gate position. The cycle is
// Closed -> Opening -> Open -> Closing -> Closed, with Closing able to
// fall back to Open when the signal returns.
type State int

const (
	Closed State = iota
	Opening
	Open
	Closing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	}
	return "unknown"
}

// Decision is the engine's verdict for one block.
type Decision struct {
	State State

	// AudioOpen reports whether this block's audio is passed to the sink.
	AudioOpen bool

	// RecordAudio reports whether this block belongs in an active
	// recording. It spans the Opening pre-roll through the Closing tail.
	RecordAudio bool

	// StartVOX and StopVOX request recording-session changes. StartVOX
	// fires once on the transition into Open; StopVOX once on the
	// transition into Closed.
	StartVOX bool
	StopVOX  bool

	// Transitioned is set when this update changed state.
	Transitioned bool
	Previous     State
}

// Engine is a hysteretic gate over per-block RSSI estimates. It is owned
// by the signal thread and is not safe for concurrent use; parameters are
// refreshed from a control snapshot before each update.
type Engine struct {
	thresholdDB    float64
	voxDelay       time.Duration
	debounceBlocks int

	cur        State
	aboveCount int
	belowSince time.Time
	lastChange time.Time
}

// New builds an engine. debounceBlocks is the number of consecutive
// above-threshold blocks required beyond the first before the gate fully
// opens; 1 matches a single-block confirmation window.
func New(thresholdDB float64, voxDelay time.Duration, debounceBlocks int) *Engine {
	if debounceBlocks < 1 {
		debounceBlocks = 1
	}
	return &Engine{
		thresholdDB:    thresholdDB,
		voxDelay:       voxDelay,
		debounceBlocks: debounceBlocks,
	}
}

func (e *Engine) SetThreshold(db float64)     { e.thresholdDB = db }
func (e *Engine) SetVOXDelay(d time.Duration) { e.voxDelay = d }
func (e *Engine) State() State                { return e.cur }
func (e *Engine) LastTransition() time.Time   { return e.lastChange }

// Update advances the state machine with one block's RSSI estimate.
func (e *Engine) Update(rssiDB float64, now time.Time) Decision {
	prev := e.cur
	above := rssiDB >= e.thresholdDB

	dec := Decision{Previous: prev}

	switch prev {
	case Closed:
		if above {
			e.cur = Opening
			e.aboveCount = 1
		}

	case Opening:
		if !above {
			// Single-block spike, reject it.
			e.cur = Closed
			e.aboveCount = 0
		} else {
			e.aboveCount++
			if e.aboveCount > e.debounceBlocks {
				e.cur = Open
				dec.StartVOX = true
			}
		}

	case Open:
		if !above {
			e.cur = Closing
			e.belowSince = now
		}

	case Closing:
		if above {
			// Signal came back before the tail expired.
			e.cur = Open
		} else if now.Sub(e.belowSince) >= e.voxDelay {
			e.cur = Closed
			e.aboveCount = 0
			dec.StopVOX = true
		}
	}

	dec.State = e.cur
	dec.Transitioned = dec.State != prev
	if dec.Transitioned {
		e.lastChange = now
	}

	dec.AudioOpen = dec.State != Closed
	dec.RecordAudio = dec.State != Closed

	return dec
}
