package output

import (
	"errors"
	"testing"

	"github.com/airbandrx/airband/pkg/radio"
)

type countingSink struct {
	writes int
	closed bool
	err    error
}

func (c *countingSink) Write(*radio.AudioFrame) error {
	c.writes++
	return c.err
}

func (c *countingSink) Close() error {
	c.closed = true
	return c.err
}

func TestTeeOffersFrameToAllSinks(t *testing.T) {
	bad := &countingSink{err: errors.New("boom")}
	good := &countingSink{}
	tee := &Tee{Sinks: []Sink{bad, good}}

	err := tee.Write(&radio.AudioFrame{Data: make([]float32, 4), SampleRate: 48000})
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if bad.writes != 1 || good.writes != 1 {
		t.Fatalf("writes = %d/%d, want 1/1", bad.writes, good.writes)
	}
}

func TestTeeCloseClosesAll(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	tee := &Tee{Sinks: []Sink{a, b}}
	if err := tee.Close(); err != nil {
		t.Fatal(err)
	}
	if !a.closed || !b.closed {
		t.Fatal("expected all sinks closed")
	}
}

func TestDiscard(t *testing.T) {
	var d Discard
	if err := d.Write(&radio.AudioFrame{}); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
}
