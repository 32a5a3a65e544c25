package hackrf

import (
	"context"
	"fmt"
	"sync"

	"github.com/samuel/go-hackrf/hackrf"

	"github.com/airbandrx/airband/pkg/radio"
)

const maxSampleRate = 20e6

// Source reads IQ blocks from a HackRF One. The driver delivers samples
// through a callback; Source buffers them into fixed-size blocks behind a
// channel so callers get the same pull interface as other radios.
type Source struct {
	sampleRate int
	blockSize  int

	mu         sync.Mutex
	device     *hackrf.Device
	centerFreq int
	gainDB     int
	pending    []byte

	blocks chan *radio.SampleBlock
	done   chan struct{}
}

func NewSource(sampleRate, blockSize int) *Source {
	return &Source{
		sampleRate: sampleRate,
		blockSize:  blockSize,
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
	device, err := hackrf.Open()
	if err != nil {
		return fmt.Errorf("opening hackrf: %w", err)
	}
	if err := device.SetSampleRateManual(s.sampleRate*2, 2); err != nil {
		device.Close()
		return err
	}
	if err := device.SetBasebandFilterBandwidth(s.sampleRate); err != nil {
		device.Close()
		return err
	}
	if err := device.SetAmpEnable(false); err != nil {
		device.Close()
		return err
	}
	if s.centerFreq != 0 {
		if err := device.SetFreq(uint64(s.centerFreq)); err != nil {
			device.Close()
			return err
		}
	}
	if err := device.SetLNAGain(clampLNA(s.gainDB)); err != nil {
		device.Close()
		return err
	}

	s.blocks = make(chan *radio.SampleBlock, 4)
	s.done = make(chan struct{})
	s.pending = s.pending[:0]
	if err := device.StartRX(s.callback); err != nil {
		device.Close()
		return err
	}
	s.device = device
	return nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return nil
	}
	close(s.done)
	err := s.device.StopRX()
	if cerr := s.device.Close(); err == nil {
		err = cerr
	}
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
	return s.device.SetFreq(uint64(hz))
}

// SetGain maps the requested dB to the LNA's 8 dB steps.
func (s *Source) SetGain(db int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gainDB = db
	if s.device == nil {
		return nil
	}
	return s.device.SetLNAGain(clampLNA(db))
}

func clampLNA(db int) int {
	if db < 0 {
		db = 0
	}
	if db > 40 {
		db = 40
	}
	return db - db%8
}

// callback runs on the driver's RX thread. Accumulate signed 8-bit IQ
// into whole blocks and hand them off without blocking the driver; a full
// queue drops the oldest data by skipping the block.
func (s *Source) callback(buf []byte) error {
	s.mu.Lock()
	centerFreq := s.centerFreq
	gainDB := s.gainDB
	s.mu.Unlock()

	s.pending = append(s.pending, buf...)
	want := s.blockSize * 2
	for len(s.pending) >= want {
		block := radio.BlockFromI8(s.pending[:want], centerFreq, gainDB, s.sampleRate)
		s.pending = s.pending[want:]
		select {
		case <-s.done:
			return fmt.Errorf("hackrf source closed")
		default:
		}
		select {
		case s.blocks <- block:
		default:
			// Queue full: evict the oldest block so the reader always
			// gets the freshest samples.
			select {
			case <-s.blocks:
			default:
			}
			select {
			case s.blocks <- block:
			default:
			}
		}
	}
	return nil
}

func (s *Source) ReadBlock(ctx context.Context) (*radio.SampleBlock, error) {
	s.mu.Lock()
	blocks := s.blocks
	s.mu.Unlock()
	if blocks == nil {
		return nil, fmt.Errorf("hackrf source not open")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case block, ok := <-blocks:
		if !ok {
			return nil, fmt.Errorf("hackrf source closed")
		}
		return block, nil
	}
}
