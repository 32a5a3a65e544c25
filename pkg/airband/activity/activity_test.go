package activity

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestTransmissionLifecycle(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir, testLogger())

	t0 := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l.Start(121_500_000, -55, t0)
	if !l.Active() {
		t.Fatal("expected active after Start")
	}
	l.Update(-48)
	l.Update(-52)
	l.End(t0.Add(3 * time.Second))

	if l.Active() {
		t.Fatal("expected inactive after End")
	}
	recent := l.Recent()
	if len(recent) != 1 {
		t.Fatalf("recent = %d records, want 1", len(recent))
	}
	rec := recent[0]
	if rec.PeakRSSIdB != -48 {
		t.Fatalf("peak = %v, want -48", rec.PeakRSSIdB)
	}
	if rec.DurationSec != 3 {
		t.Fatalf("duration = %v, want 3", rec.DurationSec)
	}

	// File is one JSON object per line, named by start date.
	path := filepath.Join(dir, "activity_20260828.log")
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatal("expected one log line")
	}
	var fromDisk Record
	if err := json.Unmarshal(sc.Bytes(), &fromDisk); err != nil {
		t.Fatal(err)
	}
	if fromDisk.FrequencyHz != 121_500_000 {
		t.Fatalf("frequency on disk = %d", fromDisk.FrequencyHz)
	}
}

func TestDoubleStartIgnored(t *testing.T) {
	l := NewLogger("", testLogger())
	t0 := time.Now()
	l.Start(118_000_000, -60, t0)
	l.Start(119_000_000, -30, t0.Add(time.Second))
	l.End(t0.Add(2 * time.Second))

	recent := l.Recent()
	if len(recent) != 1 {
		t.Fatalf("recent = %d, want 1", len(recent))
	}
	if recent[0].FrequencyHz != 118_000_000 {
		t.Fatalf("frequency = %d, second Start should be ignored", recent[0].FrequencyHz)
	}
}

func TestEndWithoutStartNoOp(t *testing.T) {
	l := NewLogger("", testLogger())
	l.End(time.Now())
	if got := l.Statistics().Count; got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}

func TestStatsAccumulate(t *testing.T) {
	l := NewLogger("", testLogger())
	t0 := time.Now()

	l.Start(118_100_000, -70, t0)
	l.End(t0.Add(2 * time.Second))
	l.Start(121_500_000, -40, t0.Add(10*time.Second))
	l.End(t0.Add(15 * time.Second))

	s := l.Statistics()
	if s.Count != 2 {
		t.Fatalf("count = %d, want 2", s.Count)
	}
	if s.TotalAirtime != 7 {
		t.Fatalf("airtime = %v, want 7", s.TotalAirtime)
	}
	if s.LongestSec != 5 {
		t.Fatalf("longest = %v, want 5", s.LongestSec)
	}
	if s.PeakRSSIdB != -40 {
		t.Fatalf("peak = %v, want -40", s.PeakRSSIdB)
	}
	if s.LastFrequency != 121_500_000 {
		t.Fatalf("last frequency = %d", s.LastFrequency)
	}
}
