package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/airbandrx/airband/pkg/airband/bus"
)

func TestViewRevertsAfterTimeout(t *testing.T) {
	m := NewMachine(3 * time.Second)
	start := time.Unix(0, 0)

	m.Touch("volume", start)
	if got := m.Advance(start.Add(time.Second)); got != "volume" {
		t.Errorf("view after 1s = %s, want volume", got)
	}
	if got := m.Advance(start.Add(3 * time.Second)); got != ViewMain {
		t.Errorf("view after timeout = %s, want main", got)
	}
}

func TestTouchResetsCountdown(t *testing.T) {
	m := NewMachine(3 * time.Second)
	start := time.Unix(0, 0)

	m.Touch("gain", start)
	m.Touch("gain", start.Add(2*time.Second))

	if got := m.Advance(start.Add(4 * time.Second)); got != "gain" {
		t.Errorf("view 2s after second touch = %s, want gain", got)
	}
	if got := m.Advance(start.Add(5 * time.Second)); got != ViewMain {
		t.Errorf("view after countdown = %s, want main", got)
	}
}

func TestMainViewStable(t *testing.T) {
	m := NewMachine(time.Second)
	if got := m.Advance(time.Unix(100, 0)); got != ViewMain {
		t.Errorf("initial view = %s, want main", got)
	}
}

func TestConsoleRender(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	st := bus.State{FrequencyHz: 121_500_000, RSSIdB: -55, SquelchOpen: true, Recording: true}
	if err := c.Render(ViewMain, st); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"121.5000 MHz", "OPEN", "REC"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	// A repeated frame draws nothing new.
	buf.Reset()
	if err := c.Render(ViewMain, st); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unchanged frame redrew %q", buf.String())
	}
}
