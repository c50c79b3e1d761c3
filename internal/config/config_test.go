package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/lexio-app/lexio/internal/apperr"
)

func newViper(t *testing.T, yamlConfig string) *viper.Viper {
	t.Helper()
	v := viper.New()
	if err := Prepare(v); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if yamlConfig != "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(yamlConfig)); err != nil {
			t.Fatalf("ReadConfig() error = %v", err)
		}
	}
	return v
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if got := Default().CacheBytes(); got != 64<<20 {
		t.Errorf("CacheBytes() = %d", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"speed too fast", func(c *Config) { c.Speed = 1.5 }, "speed"},
		{"speed too slow", func(c *Config) { c.Speed = 0.5 }, "speed"},
		{"volume", func(c *Config) { c.Volume = 1.1 }, "volume"},
		{"tick", func(c *Config) { c.Sync.TickInterval = time.Millisecond }, "tick_interval"},
		{"lead in delay", func(c *Config) { c.Sync.LeadInDelay = -time.Second }, "lead_in_delay"},
		{"drift", func(c *Config) { c.Sync.SpeedDrift = -1 }, "speed_drift"},
		{"wpm", func(c *Config) { c.Sync.BaseWPM = 10 }, "base_wpm"},
		{"thresholds", func(c *Config) { c.Thresholds.Chunking = -1 }, "thresholds"},
		{"cache", func(c *Config) { c.Cache.MaxSizeMB = 0 }, "cache"},
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 22050 }, "sample_rate"},
		{"rate limits", func(c *Config) { c.RateLimits.OpenAI = -5 }, "rate_limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("Validate() = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.Sync != want.Sync || cfg.Thresholds != want.Thresholds || cfg.Audio != want.Audio {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if cfg.Speed != 1.0 || cfg.Volume != 1.0 || !cfg.Prefetch || !cfg.LLMExtraction {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	v := newViper(t, `
speed: 1.1
repeat: true
sync:
  tick_interval: 120ms
  lead_in_offset: -0.1
thresholds:
  streaming: 1000
log_file: ~/lexio/debug.log
`)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speed != 1.1 || !cfg.Repeat {
		t.Errorf("top-level values not applied: %+v", cfg)
	}
	if cfg.Sync.TickInterval != 120*time.Millisecond || cfg.Sync.LeadInOffset != -0.1 {
		t.Errorf("Sync = %+v", cfg.Sync)
	}
	if cfg.Sync.SpeedDrift != 0.3 || cfg.Thresholds.Chunking != 2000 {
		t.Error("unset nested keys should keep their defaults")
	}
	if cfg.Thresholds.Streaming != 1000 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	home, _ := homedir.Dir()
	if cfg.LogFile != filepath.Join(home, "lexio", "debug.log") {
		t.Errorf("LogFile = %q, want ~ expanded", cfg.LogFile)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LEXIO_SPEED", "0.8")
	t.Setenv("LEXIO_SYNC_SPEED_DRIFT", "0.5")

	cfg, err := Load(newViper(t, "speed: 1.1\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speed != 0.8 {
		t.Errorf("Speed = %v, want env override 0.8", cfg.Speed)
	}
	if cfg.Sync.SpeedDrift != 0.5 {
		t.Errorf("SpeedDrift = %v, want 0.5", cfg.Sync.SpeedDrift)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load(newViper(t, "speed: 3\n")); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Load() error = %v, want validation error", err)
	}
}

func TestMarshalLoadsBack(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("# lexio configuration.")) {
		t.Error("missing header")
	}
	if !bytes.Contains(data, []byte("tick_interval: 90ms")) {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	cfg, err := Load(newViper(t, string(data)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sync != Default().Sync {
		t.Errorf("Sync = %+v", cfg.Sync)
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexio.yml")
	if err := os.WriteFile(path, []byte("speed: 1.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := Prepare(v); err != nil {
		t.Fatal(err)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	changes := make(chan Config, 4)
	Watch(v, func(c Config) { changes <- c })

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("speed: 1.2\nsync:\n  speed_drift: 0.4\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Speed == 1.2 && c.Sync.SpeedDrift == 0.4 {
				return
			}
		case <-deadline:
			t.Fatal("no config change observed")
		}
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	content := "ELEVENLABS_API_KEY=xi-from-file\nOPENAI_API_KEY=sk-from-file\n"
	if err := os.WriteFile(dotenv, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("FIRECRAWL_API_KEY", "fc-from-env")
	// Registered so the value loaded from the file is cleared afterwards.
	t.Setenv("ELEVENLABS_API_KEY", "")
	os.Unsetenv("ELEVENLABS_API_KEY")

	creds, err := LoadCredentials(dotenv, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if creds.ElevenLabsKey != "xi-from-file" {
		t.Errorf("ElevenLabsKey = %q", creds.ElevenLabsKey)
	}
	if creds.OpenAIKey != "sk-from-env" {
		t.Errorf("OpenAIKey = %q, environment should win over .env", creds.OpenAIKey)
	}
	if creds.FirecrawlKey != "fc-from-env" {
		t.Errorf("FirecrawlKey = %q", creds.FirecrawlKey)
	}
}
