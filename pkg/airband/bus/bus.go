package bus

import (
	"fmt"
	"sync"
	"time"
)

// Receiver parameter limits. The frequency range is the VHF airband the
// receiver is built for.
const (
	FreqMinHz = 118_000_000
	FreqMaxHz = 137_000_000

	GainMinDB = 0
	GainMaxDB = 50

	VolumeMinPct = 0
	VolumeMaxPct = 100

	SquelchMinDB = -90
	SquelchMaxDB = 0

	VOXDelayMin = 0
	VOXDelayMax = 10 * time.Second
)

// ValidationError reports a rejected control write. The previous value is
// always retained.
type ValidationError struct {
	Field string
	Value interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: value %v out of range", e.Field, e.Value)
}

// State is a point-in-time copy of every receiver parameter plus live
// telemetry. Fields are replaced whole on write, never partially edited,
// so a snapshot is always internally consistent.
type State struct {
	FrequencyHz        int
	GainDB             int
	VolumePct          int
	SquelchThresholdDB float64
	VOXDelay           time.Duration
	VOXEnabled         bool

	CurrentView string

	// Telemetry, written only by the signal thread.
	RSSIdB      float64
	SquelchOpen bool
	Recording   bool
}

// Bus is the single shared store of receiver parameters. All access goes
// through short critical sections; callers never hold the lock across I/O.
type Bus struct {
	mu sync.RWMutex
	st State
}

func New(initial State) *Bus {
	if initial.CurrentView == "" {
		initial.CurrentView = "main"
	}
	return &Bus{st: initial}
}

// Snapshot returns a consistent copy of the current state.
func (b *Bus) Snapshot() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st
}

func (b *Bus) SetFrequency(hz int) error {
	if hz < FreqMinHz || hz > FreqMaxHz {
		return &ValidationError{Field: "frequency_hz", Value: hz}
	}
	b.mu.Lock()
	b.st.FrequencyHz = hz
	b.mu.Unlock()
	return nil
}

func (b *Bus) SetGain(db int) error {
	if db < GainMinDB || db > GainMaxDB {
		return &ValidationError{Field: "gain_db", Value: db}
	}
	b.mu.Lock()
	b.st.GainDB = db
	b.mu.Unlock()
	return nil
}

func (b *Bus) SetVolume(pct int) error {
	if pct < VolumeMinPct || pct > VolumeMaxPct {
		return &ValidationError{Field: "volume_pct", Value: pct}
	}
	b.mu.Lock()
	b.st.VolumePct = pct
	b.mu.Unlock()
	return nil
}

func (b *Bus) SetSquelchThreshold(db float64) error {
	if db < SquelchMinDB || db > SquelchMaxDB {
		return &ValidationError{Field: "squelch_threshold_db", Value: db}
	}
	b.mu.Lock()
	b.st.SquelchThresholdDB = db
	b.mu.Unlock()
	return nil
}

func (b *Bus) SetVOXDelay(d time.Duration) error {
	if d < VOXDelayMin || d > VOXDelayMax {
		return &ValidationError{Field: "vox_delay_s", Value: d.Seconds()}
	}
	b.mu.Lock()
	b.st.VOXDelay = d
	b.mu.Unlock()
	return nil
}

func (b *Bus) SetVOXEnabled(enabled bool) {
	b.mu.Lock()
	b.st.VOXEnabled = enabled
	b.mu.Unlock()
}

func (b *Bus) SetView(view string) {
	b.mu.Lock()
	b.st.CurrentView = view
	b.mu.Unlock()
}

// SetTelemetry publishes the live values derived by the signal thread.
func (b *Bus) SetTelemetry(rssiDB float64, squelchOpen, recording bool) {
	b.mu.Lock()
	b.st.RSSIdB = rssiDB
	b.st.SquelchOpen = squelchOpen
	b.st.Recording = recording
	b.mu.Unlock()
}
