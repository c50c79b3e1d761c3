package audio

import (
	"errors"
	"sync"
	"time"
)

// MockPlayer is an in-memory player for tests. It never produces sound;
// playback stays "busy" until Finish is called.
type MockPlayer struct {
	mu sync.Mutex

	state     PlayerState
	busy      bool
	audioData []byte
	offset    time.Duration
	volume    float64

	// PlayErr is returned by the next Play call and then cleared.
	PlayErr error

	// Test callbacks
	callbacks MockCallbacks

	// Metrics for testing
	playCount   int
	pauseCount  int
	resumeCount int
	stopCount   int
}

// MockCallbacks provides hooks for testing.
type MockCallbacks struct {
	OnPlay   func(audio []byte, offset time.Duration)
	OnPause  func()
	OnResume func()
	OnStop   func()
}

// MockStats is a snapshot of the calls made against a MockPlayer.
type MockStats struct {
	Plays   int
	Pauses  int
	Resumes int
	Stops   int
}

// NewMockPlayer creates a mock player with optional callbacks.
func NewMockPlayer(callbacks MockCallbacks) *MockPlayer {
	return &MockPlayer{
		state:     StateStopped,
		volume:    1.0,
		callbacks: callbacks,
	}
}

// Play records the audio and marks the player busy.
func (mp *MockPlayer) Play(audio []byte, offset time.Duration) error {
	mp.mu.Lock()
	if mp.state == StateClosed {
		mp.mu.Unlock()
		return errors.New("player is closed")
	}
	if err := mp.PlayErr; err != nil {
		mp.PlayErr = nil
		mp.mu.Unlock()
		return err
	}

	mp.audioData = make([]byte, len(audio))
	copy(mp.audioData, audio)
	mp.offset = offset
	mp.state = StatePlaying
	mp.busy = true
	mp.playCount++
	cb := mp.callbacks.OnPlay
	mp.mu.Unlock()

	if cb != nil {
		cb(audio, offset)
	}
	return nil
}

// Pause pauses playback.
func (mp *MockPlayer) Pause() error {
	mp.mu.Lock()
	if mp.state != StatePlaying {
		mp.mu.Unlock()
		return errors.New("cannot pause: not playing")
	}
	mp.state = StatePaused
	mp.pauseCount++
	cb := mp.callbacks.OnPause
	mp.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Resume resumes paused playback.
func (mp *MockPlayer) Resume() error {
	mp.mu.Lock()
	if mp.state != StatePaused {
		mp.mu.Unlock()
		return errors.New("cannot resume: not paused")
	}
	mp.state = StatePlaying
	mp.resumeCount++
	cb := mp.callbacks.OnResume
	mp.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Stop stops playback and drops the audio.
func (mp *MockPlayer) Stop() error {
	mp.mu.Lock()
	if mp.state != StateClosed {
		mp.state = StateStopped
	}
	mp.busy = false
	mp.audioData = nil
	mp.stopCount++
	cb := mp.callbacks.OnStop
	mp.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// IsPlaying reports whether simulated audio is still running.
func (mp *MockPlayer) IsPlaying() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state == StatePlaying && mp.busy
}

// Finish simulates the stream draining.
func (mp *MockPlayer) Finish() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.busy = false
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (mp *MockPlayer) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return errors.New("volume must be between 0.0 and 1.0")
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.volume = volume
	return nil
}

// Volume returns the last volume set.
func (mp *MockPlayer) Volume() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.volume
}

// State returns the current player state.
func (mp *MockPlayer) State() PlayerState {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state
}

// Audio returns the bytes passed to the last Play and the start offset.
func (mp *MockPlayer) Audio() ([]byte, time.Duration) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.audioData, mp.offset
}

// Stats returns call counts.
func (mp *MockPlayer) Stats() MockStats {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return MockStats{
		Plays:   mp.playCount,
		Pauses:  mp.pauseCount,
		Resumes: mp.resumeCount,
		Stops:   mp.stopCount,
	}
}

// Close closes the player.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.state = StateClosed
	mp.busy = false
	return nil
}
