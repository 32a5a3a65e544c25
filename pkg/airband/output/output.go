package output

import "github.com/airbandrx/airband/pkg/radio"

// Sink consumes demodulated audio frames. Write is called from the signal
// path; implementations that can block should buffer internally.
type Sink interface {
	Write(frame *radio.AudioFrame) error
	Close() error
}

// Discard drops all audio. Used in headless setups that only record.
type Discard struct{}

func (Discard) Write(*radio.AudioFrame) error { return nil }
func (Discard) Close() error                  { return nil }

// Tee fans a frame out to several sinks, returning the first error after
// all sinks have been offered the frame.
type Tee struct {
	Sinks []Sink
}

func (t *Tee) Write(frame *radio.AudioFrame) error {
	var firstErr error
	for _, s := range t.Sinks {
		if err := s.Write(frame); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *Tee) Close() error {
	var firstErr error
	for _, s := range t.Sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
