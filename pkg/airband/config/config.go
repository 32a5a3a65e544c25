package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type SDR struct {
	SampleRate       int    `yaml:"sample_rate"`
	DefaultFrequency int    `yaml:"default_frequency"`
	DefaultGain      int    `yaml:"default_gain"`
	BufferSize       int    `yaml:"buffer_size"`
	Device           string `yaml:"device"`
	RTLSDRIndex      int    `yaml:"rtlsdr_device_index"`
	PlaybackLocation string `yaml:"playback_location"`
}

type Audio struct {
	SampleRate    int    `yaml:"sample_rate"`
	Channels      int    `yaml:"channels"`
	DefaultVolume int    `yaml:"default_volume"`
	RecordingsDir string `yaml:"recordings_dir"`
}

type Squelch struct {
	ThresholdDB    float64 `yaml:"threshold_db"`
	VOXDelaySec    float64 `yaml:"vox_delay_s"`
	VOXEnabled     bool    `yaml:"vox_enabled"`
	DebounceBlocks int     `yaml:"debounce_blocks"`
}

// VOXDelay converts the configured seconds into a duration.
func (s Squelch) VOXDelay() time.Duration {
	return time.Duration(s.VOXDelaySec * float64(time.Second))
}

type Controls struct {
	VolumePotChannel  int `yaml:"volume_pot_channel"`
	GainPotChannel    int `yaml:"gain_pot_channel"`
	SquelchPotChannel int `yaml:"squelch_pot_channel"`
	RecordButtonPin   int `yaml:"record_button_pin"`
	RecordLEDPin      int `yaml:"record_led_pin"`
}

type Display struct {
	I2CAddress  int           `yaml:"i2c_address"`
	I2CBus      int           `yaml:"i2c_bus"`
	ViewTimeout time.Duration `yaml:"view_timeout"`
}

// MenuEntry describes one adjustable parameter in display order.
type MenuEntry struct {
	Name    string  `yaml:"name"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
	Default float64 `yaml:"default"`
}

type Stream struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Status struct {
	Port int `yaml:"port"`
}

type Metrics struct {
	Host         string `yaml:"host"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
}

type Activity struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	SDR      SDR         `yaml:"sdr"`
	Audio    Audio       `yaml:"audio"`
	Squelch  Squelch     `yaml:"squelch"`
	Controls Controls    `yaml:"controls"`
	Display  Display     `yaml:"display"`
	Menu     []MenuEntry `yaml:"menu"`
	Stream   Stream      `yaml:"stream"`
	Status   Status      `yaml:"status"`
	Metrics  Metrics     `yaml:"metrics"`
	Activity Activity    `yaml:"activity"`
	Memories string      `yaml:"memories_file"`
}

// Default returns the built-in configuration. Every field the receiver
// needs has a working value here; a config file only overrides.
func Default() Config {
	return Config{
		SDR: SDR{
			SampleRate:       2_048_000,
			DefaultFrequency: 125_000_000,
			DefaultGain:      30,
			BufferSize:       262_144,
			Device:           "rtlsdr",
		},
		Audio: Audio{
			SampleRate:    48_000,
			Channels:      1,
			DefaultVolume: 50,
			RecordingsDir: "recordings",
		},
		Squelch: Squelch{
			ThresholdDB:    -60,
			VOXDelaySec:    2,
			VOXEnabled:     true,
			DebounceBlocks: 1,
		},
		Controls: Controls{
			VolumePotChannel:  0,
			GainPotChannel:    1,
			SquelchPotChannel: 2,
			RecordButtonPin:   22,
			RecordLEDPin:      23,
		},
		Display: Display{
			I2CAddress:  0x3C,
			I2CBus:      1,
			ViewTimeout: 3 * time.Second,
		},
		Menu: []MenuEntry{
			{Name: "volume", Min: 0, Max: 100, Step: 1, Default: 50},
			{Name: "gain", Min: 0, Max: 50, Step: 1, Default: 30},
			{Name: "squelch", Min: -90, Max: 0, Step: 1, Default: -60},
			{Name: "vox", Min: 0, Max: 10, Step: 0.5, Default: 2},
		},
		Status:   Status{Port: 8090},
		Activity: Activity{Dir: "logs"},
		Memories: "memories.json",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; a malformed file falls back field by field. The receiver
// never refuses to start over configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		// A type error still decodes every well-typed field over the
		// defaults; only the offending fields keep their default. A
		// syntax error decodes nothing, so start over from defaults.
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
