package playback

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/lexio-app/lexio/internal/audio"
	"github.com/lexio-app/lexio/internal/timing"
)

const (
	// MinSpeed and MaxSpeed bound the speaking-rate factor.
	MinSpeed = 0.7
	MaxSpeed = 1.2
	// DefaultSpeed is normal speaking rate.
	DefaultSpeed = 1.0
)

// ClampSpeed limits f to [MinSpeed, MaxSpeed]. Non-positive values select
// DefaultSpeed.
func ClampSpeed(f float64) float64 {
	switch {
	case f <= 0:
		return DefaultSpeed
	case f < MinSpeed:
		return MinSpeed
	case f > MaxSpeed:
		return MaxSpeed
	default:
		return f
	}
}

// Thresholds are text lengths, in characters, that select how audio is
// requested.
type Thresholds struct {
	Streaming int `mapstructure:"streaming" yaml:"streaming"` // stream below this
	Chunking  int `mapstructure:"chunking" yaml:"chunking"`   // chunk above this when not streaming
	Prefetch  int `mapstructure:"prefetch" yaml:"prefetch"`   // prefetch below this
}

// DefaultThresholds returns the standard request thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Streaming: 3000,
		Chunking:  2000,
		Prefetch:  5000,
	}
}

// Request is a synthesis request for one item.
type Request struct {
	ItemID      string
	Text        string
	VoiceID     string
	Speed       float64
	Stream      bool
	UseChunking bool
}

// Mode names the delivery mode for logging.
func (r Request) Mode() string {
	switch {
	case r.Stream:
		return "stream"
	case r.UseChunking:
		return "chunked"
	default:
		return "single"
	}
}

// PlanRequest chooses the delivery mode for text: short text is streamed
// for lower latency, long text is chunked by the provider.
func PlanRequest(text, voiceID string, speed float64, th Thresholds) Request {
	n := utf8.RuneCountInString(text)
	stream := n < th.Streaming
	return Request{
		Text:        text,
		VoiceID:     voiceID,
		Speed:       ClampSpeed(speed),
		Stream:      stream,
		UseChunking: n > th.Chunking && !stream,
	}
}

// ShouldPrefetch reports whether text is short enough to synthesize ahead
// of time.
func ShouldPrefetch(text string, th Thresholds) bool {
	return utf8.RuneCountInString(text) < th.Prefetch
}

// Audio is the result of a synthesis request: either one buffer or ordered
// chunks.
type Audio struct {
	Data        []byte
	Chunks      []audio.Chunk
	ContentType string
}

// Bytes returns a single playable buffer, reassembling chunks by index.
func (a Audio) Bytes() []byte {
	if len(a.Chunks) > 0 {
		return audio.Assemble(a.Chunks)
	}
	return a.Data
}

// Synthesizer turns text into speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Audio, error)
}

// Sink plays encoded audio.
type Sink interface {
	Play(data []byte, offset time.Duration) error
	Pause() error
	Resume() error
	Stop() error
	IsPlaying() bool
	SetVolume(volume float64) error
}

// SyncConfig tunes highlight synchronization. The offsets are empirical
// corrections for the gap between the estimated schedule and the audio the
// provider actually returns.
type SyncConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	// LeadInOffset is added once, LeadInDelay after playback starts, if the
	// highlight is still on the first two words.
	LeadInOffset float64       `mapstructure:"lead_in_offset" yaml:"lead_in_offset"`
	LeadInDelay  time.Duration `mapstructure:"lead_in_delay" yaml:"lead_in_delay"`
	// SpeedDrift scales (speed-1) into seconds added above 1.0x.
	SpeedDrift float64 `mapstructure:"speed_drift" yaml:"speed_drift"`
	BaseWPM    float64 `mapstructure:"base_wpm" yaml:"base_wpm"`
}

// DefaultSyncConfig returns the standard synchronization tuning.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		TickInterval: 90 * time.Millisecond,
		LeadInOffset: -0.225,
		LeadInDelay:  500 * time.Millisecond,
		SpeedDrift:   0.3,
		BaseWPM:      timing.DefaultBaseWPM,
	}
}

// SpeedAdjustment returns the elapsed-time correction for speed.
func (c SyncConfig) SpeedAdjustment(speed float64) float64 {
	if speed <= 1.0 {
		return 0
	}
	return (speed - 1.0) * c.SpeedDrift
}

func (c SyncConfig) params() timing.Params {
	p := timing.DefaultParams()
	if c.BaseWPM > 0 {
		p.BaseWPM = c.BaseWPM
	}
	return p
}
