package device

import (
	"context"

	"github.com/airbandrx/airband/pkg/radio"
)

// SampleSource is a tunable IQ sample source. Implementations deliver
// fixed-size blocks; ReadBlock blocks until a full block is available or
// the context is cancelled. Tuning calls may be made between reads.
type SampleSource interface {
	Open() error
	Close() error
	SetCenterFreq(hz int) error
	SetGain(db int) error
	ReadBlock(ctx context.Context) (*radio.SampleBlock, error)
	MaxSampleRate() int
}
