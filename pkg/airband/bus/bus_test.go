package bus

import (
	"errors"
	"testing"
	"time"
)

func initial() State {
	return State{
		FrequencyHz:        125_000_000,
		GainDB:             30,
		VolumePct:          50,
		SquelchThresholdDB: -60,
		VOXDelay:           2 * time.Second,
	}
}

func TestSnapshotReflectsWrite(t *testing.T) {
	b := New(initial())

	if err := b.SetVolume(80); err != nil {
		t.Fatalf("SetVolume(80): %v", err)
	}

	st := b.Snapshot()
	if st.VolumePct != 80 {
		t.Errorf("VolumePct = %d, want 80", st.VolumePct)
	}
	// No other field moved.
	want := initial()
	want.VolumePct = 80
	want.CurrentView = "main"
	if st != want {
		t.Errorf("snapshot = %+v, want %+v", st, want)
	}
}

func TestValidWrites(t *testing.T) {
	b := New(initial())

	checks := []struct {
		name string
		set  func() error
		get  func(State) interface{}
		want interface{}
	}{
		{"frequency", func() error { return b.SetFrequency(121_500_000) }, func(s State) interface{} { return s.FrequencyHz }, 121_500_000},
		{"gain", func() error { return b.SetGain(0) }, func(s State) interface{} { return s.GainDB }, 0},
		{"volume", func() error { return b.SetVolume(100) }, func(s State) interface{} { return s.VolumePct }, 100},
		{"squelch", func() error { return b.SetSquelchThreshold(-90) }, func(s State) interface{} { return s.SquelchThresholdDB }, -90.0},
		{"vox_delay", func() error { return b.SetVOXDelay(10 * time.Second) }, func(s State) interface{} { return s.VOXDelay }, 10 * time.Second},
	}

	for _, c := range checks {
		if err := c.set(); err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
			continue
		}
		if got := c.get(b.Snapshot()); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestOutOfRangeWritesRejected(t *testing.T) {
	b := New(initial())
	before := b.Snapshot()

	writes := []struct {
		name string
		set  func() error
	}{
		{"frequency low", func() error { return b.SetFrequency(88_000_000) }},
		{"frequency high", func() error { return b.SetFrequency(1_090_000_000) }},
		{"gain high", func() error { return b.SetGain(51) }},
		{"gain negative", func() error { return b.SetGain(-1) }},
		{"volume high", func() error { return b.SetVolume(150) }},
		{"volume negative", func() error { return b.SetVolume(-5) }},
		{"squelch low", func() error { return b.SetSquelchThreshold(-91) }},
		{"squelch high", func() error { return b.SetSquelchThreshold(1) }},
		{"vox negative", func() error { return b.SetVOXDelay(-time.Second) }},
		{"vox high", func() error { return b.SetVOXDelay(11 * time.Second) }},
	}

	for _, w := range writes {
		err := w.set()
		if err == nil {
			t.Errorf("%s: write accepted, want rejection", w.name)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: error type %T, want *ValidationError", w.name, err)
		}
	}

	if after := b.Snapshot(); after != before {
		t.Errorf("state changed by rejected writes: %+v -> %+v", before, after)
	}
}

func TestSetTelemetry(t *testing.T) {
	b := New(initial())
	b.SetTelemetry(-42.5, true, true)

	st := b.Snapshot()
	if st.RSSIdB != -42.5 || !st.SquelchOpen || !st.Recording {
		t.Errorf("telemetry = (%f, %v, %v), want (-42.5, true, true)", st.RSSIdB, st.SquelchOpen, st.Recording)
	}
}
