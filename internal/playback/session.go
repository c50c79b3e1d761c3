// Package playback drives one queue item at a time through synthesis,
// audio playback and word highlighting.
//
// All state lives behind the session mutex. Synthesis and the highlight
// tick run on goroutines; each synthesis carries a generation number and
// the item id so a response that arrives after the session has moved on is
// dropped instead of applied.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/cache"
	"github.com/lexio-app/lexio/internal/logging"
	"github.com/lexio-app/lexio/internal/queue"
	"github.com/lexio-app/lexio/internal/timing"
)

// ErrNoItem is returned by Play when no item has been loaded.
var ErrNoItem = apperr.Validation("nothing selected to play")

// Status is a snapshot of the session.
type Status struct {
	State     State
	ItemID    string
	Title     string
	Highlight int    // word index, -1 when nothing is highlighted
	Word      string // highlighted word
	Elapsed   time.Duration
	Total     time.Duration
	Speed     float64
	Voice     string
	Volume    float64
	Err       error
}

// ErrMessage returns the user-facing error text, or "" when there is none.
func (s Status) ErrMessage() string {
	if s.Err == nil {
		return ""
	}
	return apperr.Message(s.Err)
}

// Progress returns the elapsed fraction of the schedule in [0, 1].
func (s Status) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Elapsed) / float64(s.Total)
	return min(max(p, 0), 1)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithCache sets the audio cache. Without one the session keeps a small
// private cache.
func WithCache(c *cache.AudioCache) Option {
	return func(s *Session) { s.cache = c }
}

// WithSyncConfig sets the synchronization tuning.
func WithSyncConfig(cfg SyncConfig) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithThresholds sets the request planning thresholds.
func WithThresholds(th Thresholds) Option {
	return func(s *Session) { s.thresholds = th }
}

// WithVoice sets the initial voice.
func WithVoice(id string) Option {
	return func(s *Session) { s.voice = id }
}

// WithSpeed sets the initial speed factor.
func WithSpeed(f float64) Option {
	return func(s *Session) { s.speed = ClampSpeed(f) }
}

// Session is the playback state machine for a single item.
type Session struct {
	mu sync.Mutex
	sm *StateMachine

	synth      Synthesizer
	sink       Sink
	cache      *cache.AudioCache
	clock      func() time.Time
	cfg        SyncConfig
	thresholds Thresholds

	item    queue.Item
	hasItem bool
	voice   string
	speed   float64
	volume  float64

	schedule      timing.Schedule
	anchor        time.Time
	playStarted   time.Time
	offset        float64
	leadInDone    bool
	pausedElapsed float64
	startAt       float64
	highlight     int
	lastErr       error

	gen      uint64
	cancel   context.CancelFunc
	stopTick chan struct{}

	onChange   []func(Status)
	onComplete []func(itemID string)
}

// NewSession creates an idle session.
func NewSession(synth Synthesizer, sink Sink, opts ...Option) *Session {
	s := &Session{
		sm:         NewStateMachine(),
		synth:      synth,
		sink:       sink,
		clock:      time.Now,
		cfg:        DefaultSyncConfig(),
		thresholds: DefaultThresholds(),
		speed:      DefaultSpeed,
		volume:     1.0,
		highlight:  -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(16 << 20)
	}

	// The tick runs only while Playing.
	s.sm.OnEnter(StatePlaying, s.startTickerLocked)
	s.sm.OnExit(StatePlaying, s.stopTickerLocked)

	return s
}

// OnChange registers a callback invoked with a fresh status after every
// state change and tick. Callbacks run without the session lock held.
func (s *Session) OnChange(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// OnComplete registers a callback invoked when an item plays to its end.
func (s *Session) OnComplete(fn func(itemID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = append(s.onComplete, fn)
}

// Load binds the session to item. A different item stops whatever was
// playing, abandons any in-flight synthesis and drops the previous item's
// cached audio.
func (s *Session) Load(item queue.Item) {
	s.mu.Lock()
	if s.hasItem && s.item.ID == item.ID {
		s.mu.Unlock()
		return
	}
	s.resetLocked()
	s.invalidateLocked()
	s.item = item
	s.schedule = timing.Schedule{}
	s.hasItem = true
	s.lastErr = nil
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
}

// Item returns the loaded item.
func (s *Session) Item() (queue.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item, s.hasItem
}

// Play starts playback of the loaded item, or resumes it when paused.
// Cached audio plays immediately; otherwise synthesis runs in the
// background and ctx bounds it.
func (s *Session) Play(ctx context.Context) error {
	s.mu.Lock()
	switch s.sm.Current() {
	case StatePaused:
		s.mu.Unlock()
		return s.Resume()
	case StatePlaying, StateLoading:
		s.mu.Unlock()
		return nil
	}
	if !s.hasItem {
		s.mu.Unlock()
		return ErrNoItem
	}
	s.lastErr = nil

	key := s.keyLocked()
	if data, ok := s.cache.Get(key); ok {
		logging.CacheHit(key.ItemID, len(data))
		s.startPlaybackLocked(data)
		st := s.statusLocked()
		s.mu.Unlock()
		s.emit(st)
		return nil
	}

	s.sm.Transition(StateLoading)
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	req := PlanRequest(s.item.Content, s.voice, s.speed, s.thresholds)
	req.ItemID = s.item.ID
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	go s.synthesize(ctx, gen, req)
	return nil
}

func (s *Session) synthesize(ctx context.Context, gen uint64, req Request) {
	m := logging.StartSynthesis(req.ItemID, len(req.Text), req.Mode())
	result, err := s.synth.Synthesize(ctx, req)
	data := result.Bytes()
	m.End(len(data), err)

	s.mu.Lock()
	if gen != s.gen || !s.hasItem || s.item.ID != req.ItemID || s.sm.Current() != StateLoading {
		s.mu.Unlock()
		log.Debug("Discarding stale synthesis", "item", req.ItemID)
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	switch {
	case err != nil:
		s.failLocked(err)
	case len(data) == 0:
		s.failLocked(apperr.Provider("", 0, "No audio received", nil))
	default:
		key := cache.Key{ItemID: req.ItemID, Voice: req.VoiceID, Speed: req.Speed}
		if err := s.cache.Put(key, data); err != nil {
			log.Warn("Unable to cache audio", "item", req.ItemID, "error", err)
		}
		s.startPlaybackLocked(data)
	}
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
}

// Prefetch synthesizes item into the cache without touching session state.
// Items too long to prefetch, or already cached, are skipped.
func (s *Session) Prefetch(ctx context.Context, item queue.Item) error {
	s.mu.Lock()
	if !ShouldPrefetch(item.Content, s.thresholds) {
		s.mu.Unlock()
		return nil
	}
	key := cache.Key{ItemID: item.ID, Voice: s.voice, Speed: s.speed}
	if s.cache.Contains(key) {
		s.mu.Unlock()
		return nil
	}
	req := PlanRequest(item.Content, s.voice, s.speed, s.thresholds)
	req.ItemID = item.ID
	req.Stream = false
	s.mu.Unlock()

	m := logging.StartSynthesis(item.ID, len(item.Content), "prefetch")
	result, err := s.synth.Synthesize(ctx, req)
	data := result.Bytes()
	m.End(len(data), err)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return s.cache.Put(key, data)
}

// startPlaybackLocked moves to Playing with data, honoring an armed start
// position from Seek.
func (s *Session) startPlaybackLocked(data []byte) {
	now := s.clock()
	s.schedule = timing.EstimateWith(timing.Words(s.item.Content), s.speed, s.cfg.params())

	start := s.startAt
	s.startAt = 0
	s.highlight = -1
	if start > 0 {
		s.highlight = s.schedule.IndexAt(start)
	}

	offset := time.Duration(start * float64(time.Second))
	if err := s.sink.Play(data, offset); err != nil {
		s.failLocked(apperr.Playback("Failed to play audio", err))
		return
	}

	s.anchor = now.Add(-offset)
	s.playStarted = now
	s.offset = 0
	s.leadInDone = start > 0
	s.pausedElapsed = 0
	s.sm.Transition(StatePlaying)
}

// failLocked records err and passes through Error to Idle.
func (s *Session) failLocked(err error) {
	log.Error("Playback failed", "item", s.item.ID, "error", err)
	s.lastErr = err
	_ = s.sink.Stop()
	s.highlight = -1
	s.sm.Transition(StateError)
	s.sm.Transition(StateIdle)
}

// Pause suspends playback, keeping the schedule and elapsed time.
func (s *Session) Pause() error {
	s.mu.Lock()
	if s.sm.Current() != StatePlaying {
		s.mu.Unlock()
		return nil
	}
	s.pausedElapsed = s.clock().Sub(s.anchor).Seconds()
	// the lead-in only corrects the first words of a fresh start
	s.leadInDone = true
	if err := s.sink.Pause(); err != nil {
		log.Warn("Unable to pause audio", "error", err)
	}
	s.sm.Transition(StatePaused)
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return nil
}

// Resume continues from the elapsed time recorded at Pause.
func (s *Session) Resume() error {
	s.mu.Lock()
	if s.sm.Current() != StatePaused {
		s.mu.Unlock()
		return nil
	}
	s.anchor = s.clock().Add(-time.Duration(s.pausedElapsed * float64(time.Second)))
	if err := s.sink.Resume(); err != nil {
		s.failLocked(apperr.Playback("Failed to play audio", err))
		st := s.statusLocked()
		s.mu.Unlock()
		s.emit(st)
		return err
	}
	s.sm.Transition(StatePlaying)
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return nil
}

// Toggle pauses when playing and plays otherwise.
func (s *Session) Toggle(ctx context.Context) error {
	if s.Status().State == StatePlaying {
		return s.Pause()
	}
	return s.Play(ctx)
}

// Stop returns to Idle from any state, rewinding audio and clearing the
// highlight.
func (s *Session) Stop() {
	s.mu.Lock()
	s.resetLocked()
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
}

// Seek stops playback and arms a start position delta away from the
// current one, clamped to the loaded item's schedule. The next Play starts
// there.
func (s *Session) Seek(delta time.Duration) {
	s.mu.Lock()
	if s.hasItem {
		s.schedule = timing.EstimateWith(timing.Words(s.item.Content), s.speed, s.cfg.params())
	}
	var pos float64
	switch s.sm.Current() {
	case StatePlaying:
		pos = s.clock().Sub(s.anchor).Seconds()
	case StatePaused:
		pos = s.pausedElapsed
	case StateCompleted:
		pos = s.schedule.Total()
	default:
		pos = s.startAt
	}
	target := min(max(pos+delta.Seconds(), 0), s.schedule.Total())

	s.resetLocked()
	s.startAt = target
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
}

// SetSpeed changes the speaking rate. Cached audio for the item is dropped
// and the session stops; it must be started again.
func (s *Session) SetSpeed(f float64) float64 {
	f = ClampSpeed(f)
	s.mu.Lock()
	if f == s.speed {
		s.mu.Unlock()
		return f
	}
	s.resetLocked()
	s.invalidateLocked()
	s.speed = f
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return f
}

// SetVoice changes the voice with the same forced stop as SetSpeed.
func (s *Session) SetVoice(id string) {
	s.mu.Lock()
	if id == s.voice {
		s.mu.Unlock()
		return
	}
	s.resetLocked()
	s.invalidateLocked()
	s.voice = id
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
}

// SetVolume sets playback volume in [0, 1].
func (s *Session) SetVolume(v float64) error {
	v = min(max(v, 0), 1)
	s.mu.Lock()
	s.volume = v
	err := s.sink.SetVolume(v)
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return err
}

// SetSyncConfig replaces the synchronization tuning. A new tick interval
// takes effect the next time playback starts.
func (s *Session) SetSyncConfig(cfg SyncConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Tick advances the highlight from the clock and detects the natural end
// of the item. The session's own ticker calls it while Playing.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.sm.Current() != StatePlaying {
		s.mu.Unlock()
		return
	}

	now := s.clock()
	if !s.leadInDone && now.Sub(s.playStarted) >= s.cfg.LeadInDelay {
		s.leadInDone = true
		if s.highlight < 2 {
			s.offset += s.cfg.LeadInOffset
		}
	}

	elapsed := s.elapsedLocked(now)
	s.highlight = s.schedule.Lookup(elapsed, s.highlight, s.speed)

	var completed string
	if elapsed >= s.schedule.Total() && !s.sink.IsPlaying() {
		completed = s.item.ID
		s.highlight = -1
		s.sm.Transition(StateCompleted)
	}
	st := s.statusLocked()
	callbacks := s.onComplete
	s.mu.Unlock()

	s.emit(st)
	if completed != "" {
		for _, fn := range callbacks {
			fn(completed)
		}
	}
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Ticking reports whether the highlight ticker is running.
func (s *Session) Ticking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopTick != nil
}

// ClearCache drops all cached audio.
func (s *Session) ClearCache() {
	s.cache.Clear()
}

// CacheStats reports usage of the audio cache.
func (s *Session) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Close stops the session.
func (s *Session) Close() error {
	s.Stop()
	return nil
}

func (s *Session) elapsedLocked(now time.Time) float64 {
	raw := now.Sub(s.anchor).Seconds()
	return raw + s.offset + s.cfg.SpeedAdjustment(s.speed)
}

func (s *Session) keyLocked() cache.Key {
	return cache.Key{ItemID: s.item.ID, Voice: s.voice, Speed: s.speed}
}

func (s *Session) invalidateLocked() {
	if s.hasItem {
		s.cache.InvalidateItem(s.item.ID)
	}
}

// resetLocked cancels synthesis, stops audio and returns to Idle.
func (s *Session) resetLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.sm.Current() != StateIdle {
		if err := s.sink.Stop(); err != nil {
			log.Warn("Unable to stop audio", "error", err)
		}
		s.sm.Transition(StateIdle)
	}
	s.highlight = -1
	s.offset = 0
	s.pausedElapsed = 0
	s.startAt = 0
	s.anchor = time.Time{}
}

func (s *Session) startTickerLocked() {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		return
	}
	stop := make(chan struct{})
	s.stopTick = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

func (s *Session) stopTickerLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *Session) statusLocked() Status {
	st := Status{
		State:     s.sm.Current(),
		Highlight: s.highlight,
		Total:     time.Duration(s.schedule.Total() * float64(time.Second)),
		Speed:     s.speed,
		Voice:     s.voice,
		Volume:    s.volume,
		Err:       s.lastErr,
	}
	if s.hasItem {
		st.ItemID = s.item.ID
		st.Title = s.item.Title
	}
	if s.highlight >= 0 && s.highlight < s.schedule.Len() {
		st.Word = s.schedule.Words[s.highlight].Word
	}

	switch st.State {
	case StatePlaying:
		st.Elapsed = time.Duration(max(s.clock().Sub(s.anchor).Seconds(), 0) * float64(time.Second))
	case StatePaused:
		st.Elapsed = time.Duration(s.pausedElapsed * float64(time.Second))
	case StateCompleted:
		st.Elapsed = st.Total
	default:
		st.Elapsed = time.Duration(s.startAt * float64(time.Second))
	}
	return st
}

func (s *Session) emit(st Status) {
	s.mu.Lock()
	callbacks := s.onChange
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(st)
	}
}
