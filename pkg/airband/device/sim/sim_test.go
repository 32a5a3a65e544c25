package sim

import (
	"context"
	"testing"
	"time"
)

func TestReadBlockShapeAndPacing(t *testing.T) {
	s := NewSource(2_048_000, 2048)
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.SetCenterFreq(125_000_000); err != nil {
		t.Fatal(err)
	}
	if err := s.SetGain(30); err != nil {
		t.Fatal(err)
	}

	block, err := s.ReadBlock(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(block.Data) != 2048 {
		t.Fatalf("block size = %d, want 2048", len(block.Data))
	}
	if block.CenterFreq != 125_000_000 || block.GainDB != 30 {
		t.Fatalf("block tags = %d Hz / %d dB", block.CenterFreq, block.GainDB)
	}
}

func TestCarrierPresentDuringTransmission(t *testing.T) {
	s := NewSource(2_048_000, 2048)
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.SetGain(40)

	// The cycle starts in the transmitting phase.
	block, err := s.ReadBlock(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, c := range block.Data {
		sum += float64(real(c) * real(c))
	}
	mean := sum / float64(len(block.Data))
	if mean < 0.05 {
		t.Fatalf("mean power %v too low for keyed carrier", mean)
	}
}

func TestReadBlockHonorsCancel(t *testing.T) {
	// Large block so pacing would stall without cancellation.
	s := NewSource(2_048_000, 1<<22)
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if _, err := s.ReadBlock(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Fatal("cancelled read took too long")
	}
}
