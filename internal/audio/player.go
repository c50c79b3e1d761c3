package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

// PlayerState represents the current state of a player.
type PlayerState int32

const (
	StateStopped PlayerState = iota
	StatePlaying
	StatePaused
	StateClosed
)

// String returns the string representation of the player state.
func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrDecode is wrapped by every MP3 decoding failure.
var ErrDecode = errors.New("unable to decode audio")

// Player decodes MP3 audio and plays it through oto.
// go-mp3 always yields 16-bit little-endian stereo PCM.
type Player struct {
	// OTO context - initialized once and reused
	context *oto.Context

	player *oto.Player

	// Keeps the encoded data and decoder alive while oto reads from it.
	activeStream *stream

	state  atomic.Int32  // PlayerState
	volume atomic.Uint64 // volume * 1e6

	startTime  time.Time
	startAt    time.Duration
	pausedAt   time.Duration
	totalPause time.Duration
	pauseStart time.Time

	mu      sync.RWMutex
	stateMu sync.Mutex

	sampleRate int
	bufferSize time.Duration
}

type stream struct {
	data     []byte
	decoder  *mp3.Decoder
	duration time.Duration
}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int           // 44100 or 48000 Hz; must match the MP3 stream
	BufferSize time.Duration // oto output buffer
}

// DefaultPlayerConfig returns the default player configuration. ElevenLabs
// delivers mp3_44100_128 by default.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 44100,
		BufferSize: 100 * time.Millisecond,
	}
}

const (
	channels       = 2
	bytesPerSample = 2
	frameSize      = channels * bytesPerSample
)

// NewPlayer opens the audio device. Only one Player may exist per process
// because oto allows a single context.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	p := &Player{
		context:    ctx,
		sampleRate: config.SampleRate,
		bufferSize: config.BufferSize,
	}
	p.state.Store(int32(StateStopped))
	_ = p.SetVolume(1.0)

	return p, nil
}

func validateConfig(config PlayerConfig) error {
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}
	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

// Decode prepares an MP3 stream for playback and reports its duration.
func Decode(data []byte, sampleRate int) (*mp3.Decoder, time.Duration, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: audio data is empty", ErrDecode)
	}
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if sampleRate > 0 && decoder.SampleRate() != sampleRate {
		return nil, 0, fmt.Errorf("%w: stream is %d Hz, output is %d Hz", ErrDecode, decoder.SampleRate(), sampleRate)
	}

	var duration time.Duration
	if n := decoder.Length(); n > 0 {
		frames := n / frameSize
		duration = time.Duration(frames) * time.Second / time.Duration(decoder.SampleRate())
	}
	return decoder, duration, nil
}

// Play starts playback of MP3 audio at offset from its beginning.
func (p *Player) Play(audio []byte, offset time.Duration) error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if PlayerState(p.state.Load()) == StateClosed {
		return errors.New("player is closed")
	}

	p.stopInternal()

	data := make([]byte, len(audio))
	copy(data, audio)

	decoder, duration, err := Decode(data, p.sampleRate)
	if err != nil {
		return err
	}

	if offset > 0 {
		frames := int64(offset) * int64(p.sampleRate) / int64(time.Second)
		if _, err := decoder.Seek(frames*frameSize, io.SeekStart); err != nil {
			return fmt.Errorf("%w: seek: %w", ErrDecode, err)
		}
	}

	player := p.context.NewPlayer(decoder)
	player.SetVolume(p.getVolume())

	p.mu.Lock()
	p.player = player
	p.activeStream = &stream{data: data, decoder: decoder, duration: duration}
	p.startTime = time.Now()
	p.startAt = offset
	p.pausedAt = 0
	p.totalPause = 0
	p.mu.Unlock()

	player.Play()
	p.state.Store(int32(StatePlaying))

	return nil
}

// Pause pauses the current playback.
func (p *Player) Pause() error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if s := PlayerState(p.state.Load()); s != StatePlaying {
		return fmt.Errorf("cannot pause: player is %s", s)
	}

	p.mu.Lock()
	if p.player != nil {
		p.player.Pause()
	}
	p.pausedAt = p.positionLocked()
	p.pauseStart = time.Now()
	p.mu.Unlock()

	p.state.Store(int32(StatePaused))
	return nil
}

// Resume resumes paused playback.
func (p *Player) Resume() error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if s := PlayerState(p.state.Load()); s != StatePaused {
		return fmt.Errorf("cannot resume: player is %s", s)
	}

	p.mu.Lock()
	if p.player != nil {
		p.player.Play()
	}
	p.totalPause += time.Since(p.pauseStart)
	p.mu.Unlock()

	p.state.Store(int32(StatePlaying))
	return nil
}

// Stop stops playback and releases the stream.
func (p *Player) Stop() error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	p.stopInternal()
	return nil
}

func (p *Player) stopInternal() {
	s := PlayerState(p.state.Load())
	if s == StateStopped || s == StateClosed {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player != nil {
		p.player.Pause()
		_ = p.player.Close()
		p.player = nil
	}
	p.activeStream = nil
	p.pausedAt = 0
	p.totalPause = 0

	p.state.Store(int32(StateStopped))
}

// IsPlaying reports whether audio is still being produced. It turns false
// once oto has drained the stream.
func (p *Player) IsPlaying() bool {
	if PlayerState(p.state.Load()) != StatePlaying {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.player != nil && p.player.IsPlaying()
}

// Position returns the current playback position from the stream start.
func (p *Player) Position() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	switch PlayerState(p.state.Load()) {
	case StatePlaying:
		elapsed := p.startAt + time.Since(p.startTime) - p.totalPause
		if p.activeStream != nil && p.activeStream.duration > 0 && elapsed > p.activeStream.duration {
			elapsed = p.activeStream.duration
		}
		return elapsed
	case StatePaused:
		return p.pausedAt
	default:
		return 0
	}
}

// Duration returns the length of the current stream, or 0 when unknown.
func (p *Player) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.activeStream == nil {
		return 0
	}
	return p.activeStream.duration
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	p.volume.Store(uint64(volume * 1000000))

	p.mu.RLock()
	if p.player != nil {
		p.player.SetVolume(volume)
	}
	p.mu.RUnlock()

	return nil
}

func (p *Player) getVolume() float64 {
	return float64(p.volume.Load()) / 1000000.0
}

// State returns the current player state.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

// Close stops playback. The oto context lives until process exit.
func (p *Player) Close() error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	p.stopInternal()
	p.state.Store(int32(StateClosed))
	return nil
}
