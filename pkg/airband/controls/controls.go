package controls

import (
	"sync"
	"time"
)

// Button identifies a physical button role.
type Button string

const (
	ButtonRecord Button = "record"
)

// ButtonEvent is one debounced edge from a physical button. Events travel
// over a bounded channel; interrupt handlers never run receiver code.
type ButtonEvent struct {
	Button  Button
	Pressed bool
	At      time.Time
}

// AnalogInput reads potentiometer positions through an ADC. Channels
// return raw 10-bit readings (0..1023).
type AnalogInput interface {
	ReadChannel(ch int) (int, error)
	Close() error
}

// DiscreteIO delivers button edges and drives the record LED.
type DiscreteIO interface {
	Events() <-chan ButtonEvent
	SetRecordLED(on bool)
	Close() error
}

// SimAnalog is an in-memory AnalogInput for tests and desk operation.
type SimAnalog struct {
	mu       sync.Mutex
	channels map[int]int
}

func NewSimAnalog() *SimAnalog {
	return &SimAnalog{channels: make(map[int]int)}
}

// SetChannel sets the simulated wiper position for a channel.
func (s *SimAnalog) SetChannel(ch, raw int) {
	if raw < 0 {
		raw = 0
	} else if raw > 1023 {
		raw = 1023
	}
	s.mu.Lock()
	s.channels[ch] = raw
	s.mu.Unlock()
}

func (s *SimAnalog) ReadChannel(ch int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[ch], nil
}

func (s *SimAnalog) Close() error { return nil }

// SimButtons is an in-memory DiscreteIO. Press events that arrive faster
// than the consumer drains them are dropped, matching the bounded-queue
// contract.
type SimButtons struct {
	events chan ButtonEvent

	mu  sync.Mutex
	led bool
}

func NewSimButtons() *SimButtons {
	return &SimButtons{events: make(chan ButtonEvent, 8)}
}

// Press injects a press edge for the given button.
func (s *SimButtons) Press(b Button) {
	ev := ButtonEvent{Button: b, Pressed: true, At: time.Now()}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *SimButtons) Events() <-chan ButtonEvent { return s.events }

func (s *SimButtons) SetRecordLED(on bool) {
	s.mu.Lock()
	s.led = on
	s.mu.Unlock()
}

// RecordLED reports the simulated LED state.
func (s *SimButtons) RecordLED() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led
}

func (s *SimButtons) Close() error { return nil }
