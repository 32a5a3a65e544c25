package squelch

import (
	"testing"
	"time"
)

// block periods are arbitrary in tests; 100ms matches a 48k/4800-sample
// frame cadence closely enough.
const period = 100 * time.Millisecond

func run(e *Engine, rssi []float64, start time.Time) []Decision {
	out := make([]Decision, len(rssi))
	for i, db := range rssi {
		out[i] = e.Update(db, start.Add(time.Duration(i)*period))
	}
	return out
}

func TestSpikeDoesNotOpen(t *testing.T) {
	e := New(-60, 2*period, 1)
	decs := run(e, []float64{-80, -40, -80, -80}, time.Unix(0, 0))

	want := []State{Closed, Opening, Closed, Closed}
	for i, d := range decs {
		if d.State != want[i] {
			t.Errorf("block %d: state %s, want %s", i, d.State, want[i])
		}
		if d.StartVOX {
			t.Errorf("block %d: StartVOX fired on a single-block spike", i)
		}
	}
}

func TestSustainedSignalOpens(t *testing.T) {
	e := New(-60, 2*period, 1)
	decs := run(e, []float64{-50, -50, -50}, time.Unix(0, 0))

	if decs[0].State != Opening || decs[1].State != Open {
		t.Fatalf("states %s,%s, want opening,open", decs[0].State, decs[1].State)
	}
	if !decs[1].StartVOX {
		t.Error("StartVOX did not fire on the opening transition")
	}
	if decs[2].StartVOX {
		t.Error("StartVOX fired again while already open")
	}
}

func TestClosingDelayed(t *testing.T) {
	e := New(-60, 2*period, 1)
	start := time.Unix(0, 0)

	// Open the gate, then drop the signal.
	run(e, []float64{-50, -50}, start)

	d := e.Update(-80, start.Add(2*period))
	if d.State != Closing || !d.AudioOpen {
		t.Fatalf("after drop: state %s audio %v, want closing with audio open", d.State, d.AudioOpen)
	}

	d = e.Update(-80, start.Add(3*period))
	if d.State != Closing {
		t.Fatalf("one period into tail: state %s, want closing", d.State)
	}

	d = e.Update(-80, start.Add(4*period))
	if d.State != Closed || !d.StopVOX {
		t.Fatalf("tail expired: state %s StopVOX %v, want closed with StopVOX", d.State, d.StopVOX)
	}
	if d.AudioOpen {
		t.Error("audio still open after close")
	}
}

func TestReopenCancelsClosing(t *testing.T) {
	e := New(-60, 10*period, 1)
	start := time.Unix(0, 0)

	run(e, []float64{-50, -50, -80}, start)
	if e.State() != Closing {
		t.Fatalf("state %s, want closing", e.State())
	}

	d := e.Update(-50, start.Add(3*period))
	if d.State != Open {
		t.Errorf("re-crossing during closing: state %s, want open", d.State)
	}
	if d.StopVOX || d.StartVOX {
		t.Errorf("unexpected VOX request on reopen: %+v", d)
	}
}

// The reference sequence from the receiver design: threshold -60 dB,
// debounce one block, tail two block periods.
func TestReferenceSequence(t *testing.T) {
	e := New(-60, 2*period, 1)
	rssi := []float64{-80, -80, -40, -40, -40, -40, -80, -80, -80}
	want := []State{Closed, Closed, Opening, Open, Open, Open, Closing, Closing, Closed}

	decs := run(e, rssi, time.Unix(0, 0))
	for i, d := range decs {
		if d.State != want[i] {
			t.Errorf("block %d: state %s, want %s", i, d.State, want[i])
		}
	}
}

func TestRecordSpansPreRollAndTail(t *testing.T) {
	e := New(-60, 2*period, 1)
	rssi := []float64{-80, -40, -40, -80, -80, -80}
	decs := run(e, rssi, time.Unix(0, 0))

	wantRecord := []bool{false, true, true, true, true, false}
	for i, d := range decs {
		if d.RecordAudio != wantRecord[i] {
			t.Errorf("block %d (%s): RecordAudio = %v, want %v", i, d.State, d.RecordAudio, wantRecord[i])
		}
	}
}

func TestThresholdAdjustable(t *testing.T) {
	e := New(-60, 2*period, 1)
	e.SetThreshold(-30)

	d := e.Update(-40, time.Unix(0, 0))
	if d.State != Closed {
		t.Errorf("-40 dB against -30 dB threshold: state %s, want closed", d.State)
	}
}
