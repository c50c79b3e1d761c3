// Package config defines lexio's typed configuration, its defaults and
// validation, and how it is read from viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/cache"
	"github.com/lexio-app/lexio/internal/playback"
)

// EnvPrefix prefixes environment overrides, e.g. LEXIO_SPEED.
const EnvPrefix = "lexio"

// Config is the complete application configuration.
type Config struct {
	Voice         string              `mapstructure:"voice" yaml:"voice"`
	Speed         float64             `mapstructure:"speed" yaml:"speed"`
	Volume        float64             `mapstructure:"volume" yaml:"volume"`
	Repeat        bool                `mapstructure:"repeat" yaml:"repeat"`
	Prefetch      bool                `mapstructure:"prefetch" yaml:"prefetch"`
	LLMExtraction bool                `mapstructure:"llm_extraction" yaml:"llm_extraction"`
	Debug         bool                `mapstructure:"debug" yaml:"debug"`
	LogFile       string              `mapstructure:"log_file" yaml:"log_file"`
	PrefsFile     string              `mapstructure:"prefs_file" yaml:"prefs_file"`
	Sync          playback.SyncConfig `mapstructure:"sync" yaml:"sync"`
	Thresholds    playback.Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	Audio         AudioConfig         `mapstructure:"audio" yaml:"audio"`
	RateLimits    RateLimits          `mapstructure:"rate_limits" yaml:"rate_limits"`
}

// CacheConfig bounds the in-memory audio cache.
type CacheConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
}

// AudioConfig configures the output device.
type AudioConfig struct {
	SampleRate int           `mapstructure:"sample_rate" yaml:"sample_rate"`
	BufferSize time.Duration `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// RateLimits caps requests per minute for each provider. Zero disables the
// limit.
type RateLimits struct {
	Firecrawl  int `mapstructure:"firecrawl" yaml:"firecrawl"`
	OpenAI     int `mapstructure:"openai" yaml:"openai"`
	ElevenLabs int `mapstructure:"elevenlabs" yaml:"elevenlabs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Speed:         playback.DefaultSpeed,
		Volume:        1.0,
		Prefetch:      true,
		LLMExtraction: true,
		Sync:          playback.DefaultSyncConfig(),
		Thresholds:    playback.DefaultThresholds(),
		Cache:         CacheConfig{MaxSizeMB: cache.DefaultCapacity >> 20},
		Audio: AudioConfig{
			SampleRate: 44100,
			BufferSize: 100 * time.Millisecond,
		},
		RateLimits: RateLimits{
			Firecrawl:  20,
			OpenAI:     60,
			ElevenLabs: 120,
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Speed < playback.MinSpeed || c.Speed > playback.MaxSpeed:
		return invalid("speed must be between %.1f and %.1f, got %.2f", playback.MinSpeed, playback.MaxSpeed, c.Speed)
	case c.Volume < 0 || c.Volume > 1:
		return invalid("volume must be between 0.0 and 1.0, got %.2f", c.Volume)
	case c.Sync.TickInterval < 10*time.Millisecond || c.Sync.TickInterval > time.Second:
		return invalid("sync.tick_interval must be between 10ms and 1s, got %s", c.Sync.TickInterval)
	case c.Sync.LeadInDelay < 0:
		return invalid("sync.lead_in_delay must not be negative, got %s", c.Sync.LeadInDelay)
	case c.Sync.SpeedDrift < 0:
		return invalid("sync.speed_drift must not be negative, got %.2f", c.Sync.SpeedDrift)
	case c.Sync.BaseWPM < 60 || c.Sync.BaseWPM > 400:
		return invalid("sync.base_wpm must be between 60 and 400, got %.0f", c.Sync.BaseWPM)
	case c.Thresholds.Streaming < 0 || c.Thresholds.Chunking < 0 || c.Thresholds.Prefetch < 0:
		return invalid("thresholds must not be negative")
	case c.Cache.MaxSizeMB < 1 || c.Cache.MaxSizeMB > 1024:
		return invalid("cache.max_size_mb must be between 1 and 1024, got %d", c.Cache.MaxSizeMB)
	case c.Audio.SampleRate != 44100 && c.Audio.SampleRate != 48000:
		return invalid("audio.sample_rate must be 44100 or 48000, got %d", c.Audio.SampleRate)
	case c.RateLimits.Firecrawl < 0 || c.RateLimits.OpenAI < 0 || c.RateLimits.ElevenLabs < 0:
		return invalid("rate_limits must not be negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return apperr.Validation("invalid config: " + fmt.Sprintf(format, args...))
}

// CacheBytes returns the cache capacity in bytes.
func (c Config) CacheBytes() int64 {
	return int64(c.Cache.MaxSizeMB) << 20
}

// expandPaths resolves a leading ~ in file settings.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.LogFile, &c.PrefsFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("unable to expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Prepare registers the defaults of every key with v and enables
// LEXIO_-prefixed environment overrides, e.g. LEXIO_SYNC_SPEED_DRIFT.
func Prepare(v *viper.Viper) error {
	raw, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("unable to encode defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("unable to decode defaults: %w", err)
	}
	setDefaults(v, "", tree)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch calls fn with the reloaded configuration whenever v's config file
// changes. Invalid edits are logged and skipped.
func Watch(v *viper.Viper, fn func(Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Load(v)
		if err != nil {
			log.Warn("Ignoring config change", "path", e.Name, "error", err)
			return
		}
		log.Info("Config reloaded", "path", e.Name)
		fn(cfg)
	})
	v.WatchConfig()
}

// Header is written above the generated default config file.
const Header = `# lexio configuration.
# Every key can be overridden with a LEXIO_ environment variable, e.g.
# LEXIO_SPEED=1.1 or LEXIO_SYNC_TICK_INTERVAL=120ms.
# API keys are read from ELEVENLABS_API_KEY, OPENAI_API_KEY and
# FIRECRAWL_API_KEY (a .env file in the working directory also works).

`

// Marshal renders c as a commented YAML config file.
func Marshal(c Config) ([]byte, error) {
	body, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("unable to encode config: %w", err)
	}
	return append([]byte(Header), body...), nil
}
