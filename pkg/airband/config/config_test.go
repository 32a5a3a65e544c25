package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SDR.SampleRate != 2_048_000 {
		t.Errorf("SampleRate = %d, want default 2048000", cfg.SDR.SampleRate)
	}
	if cfg.Squelch.VOXDelay() != 2*time.Second {
		t.Errorf("VOXDelay = %v, want default 2s", cfg.Squelch.VOXDelay())
	}
	if len(cfg.Menu) != 4 {
		t.Errorf("menu entries = %d, want default 4", len(cfg.Menu))
	}
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := `
sdr:
  default_frequency: 118100000
squelch:
  threshold_db: -45
`
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SDR.DefaultFrequency != 118_100_000 {
		t.Errorf("DefaultFrequency = %d, want file value", cfg.SDR.DefaultFrequency)
	}
	if cfg.Squelch.ThresholdDB != -45 {
		t.Errorf("ThresholdDB = %f, want file value", cfg.Squelch.ThresholdDB)
	}
	// Untouched sections keep defaults.
	if cfg.SDR.SampleRate != 2_048_000 {
		t.Errorf("SampleRate = %d, want default", cfg.SDR.SampleRate)
	}
	if cfg.Audio.DefaultVolume != 50 {
		t.Errorf("DefaultVolume = %d, want default", cfg.Audio.DefaultVolume)
	}
}

func TestLoadTypeErrorKeepsGoodFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	// One field of the wrong type must not wipe its well-typed siblings.
	bad := `
sdr:
  sample_rate: fast
  default_frequency: 118100000
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("bad field type produced no error")
	}
	if cfg.SDR.DefaultFrequency != 118_100_000 {
		t.Errorf("DefaultFrequency = %d, want file value kept despite bad sibling field", cfg.SDR.DefaultFrequency)
	}
	if cfg.SDR.SampleRate != 2_048_000 {
		t.Errorf("SampleRate = %d, want default for the unparseable field", cfg.SDR.SampleRate)
	}
}

func TestVOXDelayParsesAsSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
squelch:
  vox_delay_s: 2.5
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := cfg.Squelch.VOXDelay(), 2500*time.Millisecond; got != want {
		t.Errorf("VOXDelay = %v, want %v", got, want)
	}
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("malformed file produced no error")
	}
	if cfg.SDR.SampleRate != 2_048_000 {
		t.Errorf("SampleRate = %d, want defaults on malformed config", cfg.SDR.SampleRate)
	}
}
