package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"github.com/airbandrx/airband/pkg/radio"
)

// Trigger records what started a session. A manually started session is
// only ever stopped manually; VOX close events do not touch it.
type Trigger int

const (
	TriggerManual Trigger = iota
	TriggerVOX
)

func (t Trigger) String() string {
	if t == TriggerManual {
		return "manual"
	}
	return "vox"
}

// Info describes a finished recording for the status API.
type Info struct {
	Name  string    `json:"name"`
	Size  int64     `json:"size_bytes"`
	MTime time.Time `json:"modified"`
}

type session struct {
	file    *os.File
	enc     *wav.Encoder
	trigger Trigger
	start   time.Time
	path    string
	samples int
}

// Manager owns the lifecycle of at most one active capture file. All
// methods are safe for concurrent use; file writes happen under the
// manager lock, which no other component ever takes.
type Manager struct {
	dir        string
	sampleRate int
	logger     zerolog.Logger

	mu   sync.Mutex
	sess *session
	seq  int
}

func NewManager(dir string, sampleRate int, logger zerolog.Logger) *Manager {
	return &Manager{
		dir:        dir,
		sampleRate: sampleRate,
		logger:     logger.With().Str("component", "recording").Logger(),
	}
}

// Start opens a new session. Starting while a session is active is a
// no-op, except that a manual start takes ownership of a VOX session so
// the engine's close events stop applying to it.
func (m *Manager) Start(trigger Trigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess != nil {
		if trigger == TriggerManual && m.sess.trigger == TriggerVOX {
			m.sess.trigger = TriggerManual
			m.logger.Info().Str("file", m.sess.path).Msg("recording taken over manually")
		}
		return nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("recordings dir: %w", err)
	}

	path := m.nextPath(time.Now())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}

	m.sess = &session{
		file:    f,
		enc:     wav.NewEncoder(f, m.sampleRate, 16, 1, 1),
		trigger: trigger,
		start:   time.Now(),
		path:    path,
	}
	m.logger.Info().
		Str("file", path).
		Str("trigger", trigger.String()).
		Msg("recording started")
	return nil
}

// Stop finalizes the active session regardless of trigger. Stopping with
// no active session is a no-op.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeSession()
}

// StopVOX finalizes the active session only if it is still VOX-owned.
func (m *Manager) StopVOX() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil || m.sess.trigger != TriggerVOX {
		return nil
	}
	return m.closeSession()
}

// Toggle is the record-button behavior: start manual if idle, stop
// whatever is active otherwise.
func (m *Manager) Toggle() error {
	m.mu.Lock()
	active := m.sess != nil
	m.mu.Unlock()

	if active {
		return m.Stop()
	}
	return m.Start(TriggerManual)
}

// Active reports whether a session exists and what owns it.
func (m *Manager) Active() (Trigger, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return 0, false
	}
	return m.sess.trigger, true
}

// Append writes one audio frame to the active session. Frames arriving
// with no session active are dropped silently. A write failure finalizes
// the session; the signal chain is unaffected.
func (m *Manager) Append(frame *radio.AudioFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil || len(frame.Data) == 0 {
		return nil
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: m.sampleRate},
		Data:           make([]int, len(frame.Data)),
		SourceBitDepth: 16,
	}
	for i, v := range frame.Data {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		buf.Data[i] = int(v * 32767)
	}

	if err := m.sess.enc.Write(buf); err != nil {
		path := m.sess.path
		m.abortSession()
		return fmt.Errorf("append to %s: %w", path, err)
	}
	m.sess.samples += len(frame.Data)
	return nil
}

// Shutdown finalizes any open session. It runs on the orchestrator's
// shutdown path so a file is never left with a placeholder header.
func (m *Manager) Shutdown() error {
	return m.Stop()
}

// List returns finished recordings, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".wav" {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: e.Name(), Size: fi.Size(), MTime: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MTime.After(out[j].MTime) })
	return out, nil
}

// closeSession finalizes the WAV header and closes the file. Caller holds
// the lock.
func (m *Manager) closeSession() error {
	if m.sess == nil {
		return nil
	}
	sess := m.sess
	m.sess = nil

	if err := sess.enc.Close(); err != nil {
		sess.file.Close()
		return fmt.Errorf("finalize %s: %w", sess.path, err)
	}
	if err := sess.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", sess.path, err)
	}

	m.logger.Info().
		Str("file", sess.path).
		Str("trigger", sess.trigger.String()).
		Dur("duration", time.Since(sess.start)).
		Int("samples", sess.samples).
		Msg("recording finished")
	return nil
}

// abortSession drops the session after a write failure, still attempting
// to leave a well-formed file behind. Caller holds the lock.
func (m *Manager) abortSession() {
	sess := m.sess
	m.sess = nil
	if err := sess.enc.Close(); err != nil {
		m.logger.Warn().Err(err).Str("file", sess.path).Msg("finalize after write failure")
	}
	sess.file.Close()
}

// nextPath derives a timestamped filename, suffixed when two sessions
// land in the same second.
func (m *Manager) nextPath(now time.Time) string {
	base := filepath.Join(m.dir, fmt.Sprintf("rec_%s", now.Format("20060102_150405")))
	path := base + ".wav"
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		m.seq++
		path = fmt.Sprintf("%s_%d.wav", base, m.seq)
	}
}
