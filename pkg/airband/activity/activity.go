package activity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Record is one completed transmission.
type Record struct {
	FrequencyHz int       `json:"frequency_hz"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationSec float64   `json:"duration_sec"`
	PeakRSSIdB  float64   `json:"peak_rssi_db"`
}

// Stats summarizes logged transmissions.
type Stats struct {
	Count         int     `json:"count"`
	TotalAirtime  float64 `json:"total_airtime_sec"`
	LongestSec    float64 `json:"longest_sec"`
	PeakRSSIdB    float64 `json:"peak_rssi_db"`
	LastFrequency int     `json:"last_frequency_hz"`
}

// Logger records transmission start/end events and appends completed
// transmissions as JSON lines to a per-day file under dir.
type Logger struct {
	dir string
	log zerolog.Logger

	mu        sync.Mutex
	active    bool
	startedAt time.Time
	freqHz    int
	peakDB    float64
	recent    []Record
	stats     Stats
}

const recentLimit = 50

func NewLogger(dir string, logger zerolog.Logger) *Logger {
	return &Logger{
		dir: dir,
		log: logger.With().Str("component", "activity").Logger(),
	}
}

// Start marks the beginning of a transmission. A second Start without an
// End is ignored.
func (l *Logger) Start(frequencyHz int, rssiDB float64, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active {
		return
	}
	l.active = true
	l.startedAt = now
	l.freqHz = frequencyHz
	l.peakDB = rssiDB
	l.log.Debug().
		Int("frequency_hz", frequencyHz).
		Float64("rssi_db", rssiDB).
		Msg("transmission start")
}

// Update tracks the peak signal level during the active transmission.
func (l *Logger) Update(rssiDB float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	if rssiDB > l.peakDB {
		l.peakDB = rssiDB
	}
}

// End closes the active transmission and appends it to the day's log file.
func (l *Logger) End(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	l.active = false

	rec := Record{
		FrequencyHz: l.freqHz,
		Start:       l.startedAt,
		End:         now,
		DurationSec: now.Sub(l.startedAt).Seconds(),
		PeakRSSIdB:  l.peakDB,
	}

	l.recent = append(l.recent, rec)
	if len(l.recent) > recentLimit {
		l.recent = l.recent[len(l.recent)-recentLimit:]
	}
	l.stats.Count++
	l.stats.TotalAirtime += rec.DurationSec
	if rec.DurationSec > l.stats.LongestSec {
		l.stats.LongestSec = rec.DurationSec
	}
	if l.stats.Count == 1 || rec.PeakRSSIdB > l.stats.PeakRSSIdB {
		l.stats.PeakRSSIdB = rec.PeakRSSIdB
	}
	l.stats.LastFrequency = rec.FrequencyHz

	if err := l.append(rec); err != nil {
		l.log.Warn().Err(err).Msg("writing activity log")
	}

	l.log.Info().
		Int("frequency_hz", rec.FrequencyHz).
		Float64("duration_sec", rec.DurationSec).
		Float64("peak_rssi_db", rec.PeakRSSIdB).
		Msg("transmission end")
}

// Active reports whether a transmission is in progress.
func (l *Logger) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Recent returns the most recent completed transmissions, newest last.
func (l *Logger) Recent() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.recent))
	copy(out, l.recent)
	return out
}

// Statistics returns a copy of the running totals.
func (l *Logger) Statistics() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Logger) append(rec Record) error {
	if l.dir == "" {
		return nil
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(l.dir, fmt.Sprintf("activity_%s.log", rec.Start.Format("20060102")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}
