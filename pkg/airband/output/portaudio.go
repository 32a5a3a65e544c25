package output

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"

	"github.com/airbandrx/airband/pkg/radio"
)

const playbackFrames = 1024

// Speaker plays audio on the default output device through PortAudio.
// Frames are queued on a channel and written by a dedicated goroutine so
// a slow device never stalls the signal path; when the queue is full the
// oldest frame is dropped.
type Speaker struct {
	sampleRate int
	logger     zerolog.Logger

	frames chan *radio.AudioFrame
	done   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

func NewSpeaker(sampleRate int, logger zerolog.Logger) (*Speaker, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	s := &Speaker{
		sampleRate: sampleRate,
		logger:     logger.With().Str("component", "speaker").Logger(),
		frames:     make(chan *radio.AudioFrame, 16),
		done:       make(chan struct{}),
	}

	buf := make([]float32, playbackFrames)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(buf), &buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("starting playback stream: %w", err)
	}

	s.wg.Add(1)
	go s.run(stream, buf)
	return s, nil
}

func (s *Speaker) run(stream *portaudio.Stream, buf []float32) {
	defer s.wg.Done()
	defer func() {
		stream.Stop()
		stream.Close()
		portaudio.Terminate()
	}()

	pending := make([]float32, 0, playbackFrames*4)
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.frames:
			pending = append(pending, frame.Data...)
			for len(pending) >= playbackFrames {
				copy(buf, pending[:playbackFrames])
				pending = pending[playbackFrames:]
				if err := stream.Write(); err != nil {
					// Underruns are routine on small ARM boards.
					s.logger.Debug().Err(err).Msg("playback write")
				}
			}
		}
	}
}

func (s *Speaker) Write(frame *radio.AudioFrame) error {
	select {
	case <-s.done:
		return fmt.Errorf("speaker closed")
	case s.frames <- frame:
	default:
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- frame:
		default:
		}
	}
	return nil
}

func (s *Speaker) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return s.closeErr
}
