package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// MaxSlots is the number of memory positions the front panel can cycle
// through.
const MaxSlots = 10

// Entry is one stored channel.
type Entry struct {
	Name        string `json:"name"`
	FrequencyHz int    `json:"frequency_hz"`
}

// Manager persists named frequency presets across restarts. Slots are
// numbered 1..MaxSlots.
type Manager struct {
	path   string
	logger zerolog.Logger

	mu    sync.Mutex
	slots map[int]Entry
}

// Common tower/approach channels seeded on first run.
var defaultSlots = map[int]Entry{
	1: {Name: "Tower", FrequencyHz: 118_100_000},
	2: {Name: "Approach", FrequencyHz: 119_100_000},
	3: {Name: "Ground", FrequencyHz: 121_700_000},
	4: {Name: "Emergency", FrequencyHz: 121_500_000},
	5: {Name: "ATIS", FrequencyHz: 126_000_000},
}

func NewManager(path string, logger zerolog.Logger) *Manager {
	m := &Manager{
		path:   path,
		logger: logger.With().Str("component", "memory").Logger(),
		slots:  make(map[int]Entry),
	}
	m.load()
	return m
}

func (m *Manager) load() {
	contents, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn().Err(err).Msg("reading memories, seeding defaults")
		}
		for k, v := range defaultSlots {
			m.slots[k] = v
		}
		if err := m.save(); err != nil {
			m.logger.Warn().Err(err).Msg("saving default memories")
		}
		return
	}

	if err := json.Unmarshal(contents, &m.slots); err != nil {
		m.logger.Warn().Err(err).Msg("malformed memories file, seeding defaults")
		for k, v := range defaultSlots {
			m.slots[k] = v
		}
	}
}

// save writes the slot map. Caller holds the lock (or is the constructor).
func (m *Manager) save() error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	contents, err := json.MarshalIndent(m.slots, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, contents, 0o644)
}

// Save stores a preset in the given slot.
func (m *Manager) Save(slot int, name string, frequencyHz int) error {
	if slot < 1 || slot > MaxSlots {
		return fmt.Errorf("memory slot %d out of range 1..%d", slot, MaxSlots)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = Entry{Name: name, FrequencyHz: frequencyHz}
	return m.save()
}

// Recall returns the preset in a slot.
func (m *Manager) Recall(slot int) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.slots[slot]
	return e, ok
}

// Delete clears a slot.
func (m *Manager) Delete(slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot]; !ok {
		return nil
	}
	delete(m.slots, slot)
	return m.save()
}

// List returns occupied slots in order.
func (m *Manager) List() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.slots))
	for slot := range m.slots {
		out = append(out, slot)
	}
	sort.Ints(out)
	return out
}

// Entries returns a copy of every occupied slot keyed by number.
func (m *Manager) Entries() map[int]Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]Entry, len(m.slots))
	for k, v := range m.slots {
		out[k] = v
	}
	return out
}
