package display

import (
	"time"

	"github.com/airbandrx/airband/pkg/airband/bus"
)

// Well-known view names. Parameter views come from the configured menu
// entries; these two always exist.
const (
	ViewMain  = "main"
	ViewError = "error"
)

// Machine tracks which view is on screen. Touching a parameter view
// arms a countdown; once it elapses without further input the screen
// falls back to the main view. The machine holds presentation state
// only, never signal data.
type Machine struct {
	view       string
	lastChange time.Time
	timeout    time.Duration
}

func NewMachine(timeout time.Duration) *Machine {
	return &Machine{view: ViewMain, timeout: timeout}
}

// Touch switches to the given view and restarts the countdown.
func (m *Machine) Touch(view string, now time.Time) {
	m.view = view
	m.lastChange = now
}

// Advance ages the countdown and returns the view to render.
func (m *Machine) Advance(now time.Time) string {
	if m.view != ViewMain && now.Sub(m.lastChange) >= m.timeout {
		m.view = ViewMain
	}
	return m.view
}

func (m *Machine) View() string {
	return m.view
}

// Renderer is the rendering collaborator. The OLED driver, the terminal
// fallback and the headless no-op all satisfy it.
type Renderer interface {
	Render(view string, st bus.State) error
	Close() error
}

// Nop discards every frame; used in headless mode.
type Nop struct{}

func (Nop) Render(string, bus.State) error { return nil }
func (Nop) Close() error                   { return nil }
