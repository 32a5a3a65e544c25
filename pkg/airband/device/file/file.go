package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/airbandrx/airband/pkg/radio"
)

// Source plays back a raw unsigned 8-bit IQ capture at realtime pace,
// looping at end of file. Useful for replaying recorded channel activity
// through the full receive chain.
type Source struct {
	path       string
	sampleRate int
	blockSize  int

	f   *os.File
	raw []byte

	centerFreq int
	gainDB     int
}

func NewSource(path string, sampleRate, blockSize int) *Source {
	return &Source{
		path:       path,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		raw:        make([]byte, blockSize*2),
	}
}

func (s *Source) MaxSampleRate() int { return 20e6 }

func (s *Source) Open() error {
	if s.f != nil {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("opening IQ capture: %w", err)
	}
	s.f = f
	return nil
}

func (s *Source) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *Source) SetCenterFreq(hz int) error {
	s.centerFreq = hz
	return nil
}

func (s *Source) SetGain(db int) error {
	s.gainDB = db
	return nil
}

func (s *Source) ReadBlock(ctx context.Context) (*radio.SampleBlock, error) {
	if s.f == nil {
		return nil, fmt.Errorf("file source not open")
	}

	blockDuration := time.Duration(float64(s.blockSize) / float64(s.sampleRate) * float64(time.Second))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(blockDuration):
	}

	if _, err := io.ReadFull(s.f, s.raw); err != nil {
		if err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, err
		}
		// Loop the capture.
		if _, err := s.f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(s.f, s.raw); err != nil {
			return nil, fmt.Errorf("capture shorter than one block: %w", err)
		}
	}
	return radio.BlockFromU8(s.raw, s.centerFreq, s.gainDB, s.sampleRate), nil
}
