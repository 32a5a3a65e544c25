package util

import "testing"

func TestMHzString(t *testing.T) {
	if got, want := MHzString(121_500_000), "121.5000 MHz"; got != want {
		t.Errorf("MHzString = %q, want %q", got, want)
	}
}

func TestScaleADC(t *testing.T) {
	tests := []struct {
		raw, min, max, want int
	}{
		{0, 0, 100, 0},
		{1023, 0, 100, 100},
		{512, 0, 100, 50},
		{1023, 0, 50, 50},
		{0, -90, 0, -90},
		{1023, -90, 0, 0},
		{-5, 0, 100, 0},
		{2000, 0, 100, 100},
	}
	for _, tt := range tests {
		if got := ScaleADC(tt.raw, tt.min, tt.max); got != tt.want {
			t.Errorf("ScaleADC(%d, %d, %d) = %d, want %d", tt.raw, tt.min, tt.max, got, tt.want)
		}
	}
}
