package sim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/airbandrx/airband/pkg/radio"
)

const (
	toneHz         = 1000.0
	modulationIdx  = 0.8
	noiseAmplitude = 0.05
	txOnDuration   = 4 * time.Second
	txOffDuration  = 3 * time.Second
)

// Source generates a synthetic aviation channel for development without
// hardware: an AM carrier modulated by a 1 kHz tone that keys on and off
// in bursts, over a noise floor. Blocks are paced in real time.
type Source struct {
	sampleRate int
	blockSize  int

	mu         sync.Mutex
	open       bool
	centerFreq int
	gainDB     int

	phase   float64
	started time.Time
	rng     *rand.Rand
}

func NewSource(sampleRate, blockSize int) *Source {
	return &Source{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Source) MaxSampleRate() int { return 20e6 }

func (s *Source) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.started = time.Now()
	return nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *Source) SetCenterFreq(hz int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centerFreq = hz
	return nil
}

func (s *Source) SetGain(db int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gainDB = db
	return nil
}

// transmitting keys the carrier on a fixed on/off cycle so squelch and
// recording behavior can be exercised end to end.
func (s *Source) transmitting(now time.Time) bool {
	cycle := txOnDuration + txOffDuration
	offset := now.Sub(s.started) % cycle
	return offset < txOnDuration
}

func (s *Source) ReadBlock(ctx context.Context) (*radio.SampleBlock, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil, context.Canceled
	}
	centerFreq := s.centerFreq
	gainDB := s.gainDB
	tx := s.transmitting(time.Now())
	s.mu.Unlock()

	blockDuration := time.Duration(float64(s.blockSize) / float64(s.sampleRate) * float64(time.Second))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(blockDuration):
	}

	carrier := 0.1 + float64(gainDB)/50.0*0.5
	data := make([]complex64, s.blockSize)
	dt := 1.0 / float64(s.sampleRate)
	for i := range data {
		var sample float64
		if tx {
			envelope := carrier * (1 + modulationIdx*math.Sin(2*math.Pi*toneHz*s.phase))
			sample = envelope
		}
		noiseI := (s.rng.Float64()*2 - 1) * noiseAmplitude
		noiseQ := (s.rng.Float64()*2 - 1) * noiseAmplitude
		data[i] = complex(float32(sample+noiseI), float32(noiseQ))
		s.phase += dt
	}

	return &radio.SampleBlock{
		Data:       data,
		CenterFreq: centerFreq,
		GainDB:     gainDB,
		SampleRate: s.sampleRate,
	}, nil
}
