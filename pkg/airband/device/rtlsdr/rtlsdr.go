package rtlsdr

import (
	"context"
	"fmt"
	"sync"

	gsdr "github.com/jpoirier/gortlsdr"

	"github.com/airbandrx/airband/pkg/radio"
)

const maxSampleRate = 2e6

// Source reads IQ blocks from an RTL-SDR dongle over a synchronous USB
// bulk transfer.
type Source struct {
	deviceIdx  int
	sampleRate int
	blockSize  int

	mu         sync.Mutex
	device     *gsdr.Context
	centerFreq int
	gainDB     int

	raw []byte
}

// NewSource configures a source for the dongle at deviceIdx. blockSize is
// the number of complex samples per block.
func NewSource(deviceIdx, sampleRate, blockSize int) *Source {
	return &Source{
		deviceIdx:  deviceIdx,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		raw:        make([]byte, blockSize*2),
	}
}

func (s *Source) MaxSampleRate() int {
	return maxSampleRate
}

func (s *Source) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != nil {
		return nil
	}
	device, err := gsdr.Open(s.deviceIdx)
	if err != nil {
		return fmt.Errorf("opening rtlsdr %d: %w", s.deviceIdx, err)
	}
	if err := device.SetSampleRate(s.sampleRate); err != nil {
		device.Close()
		return err
	}
	if err := device.SetTunerGainMode(true); err != nil {
		device.Close()
		return err
	}
	if err := device.ResetBuffer(); err != nil {
		device.Close()
		return err
	}
	s.device = device
	if s.centerFreq != 0 {
		if err := s.device.SetCenterFreq(s.centerFreq); err != nil {
			return err
		}
	}
	if s.gainDB != 0 {
		if err := s.device.SetTunerGain(s.gainDB * 10); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return nil
	}
	err := s.device.Close()
	s.device = nil
	return err
}

func (s *Source) SetCenterFreq(hz int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centerFreq = hz
	if s.device == nil {
		return nil
	}
	return s.device.SetCenterFreq(hz)
}

// SetGain sets the tuner gain in whole dB. The tuner quantizes to its
// nearest supported step.
func (s *Source) SetGain(db int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gainDB = db
	if s.device == nil {
		return nil
	}
	return s.device.SetTunerGain(db * 10)
}

func (s *Source) ReadBlock(ctx context.Context) (*radio.SampleBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	device := s.device
	centerFreq := s.centerFreq
	gainDB := s.gainDB
	s.mu.Unlock()
	if device == nil {
		return nil, fmt.Errorf("rtlsdr source not open")
	}

	filled := 0
	for filled < len(s.raw) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := device.ReadSync(s.raw[filled:], len(s.raw)-filled)
		if err != nil {
			return nil, fmt.Errorf("rtlsdr read: %w", err)
		}
		filled += n
	}
	return radio.BlockFromU8(s.raw, centerFreq, gainDB, s.sampleRate), nil
}
