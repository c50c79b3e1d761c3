package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrIndexOutOfRange is returned when an index does not address an item.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Item is one unit of content eligible for playback. ID is the sole
// equality key and Content never changes once the item is enqueued.
type Item struct {
	ID       string
	Title    string
	Content  string
	Duration time.Duration // optional, zero when unknown
}

// State is a copy of the queue contents and flags.
type State struct {
	Items        []Item
	CurrentIndex int
	PlayIntent   bool
	Repeat       bool
	Shuffle      bool
}

// Current returns the current item of the snapshot.
func (s State) Current() (Item, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[s.CurrentIndex], true
}

// Stats tracks queue activity.
type Stats struct {
	TotalAdded   int64
	TotalRemoved int64
	PeakSize     int
	LastChange   time.Time
}

// Store owns the queue. All methods are safe for concurrent use.
// currentIndex is always -1 or a valid index into items.
type Store struct {
	mu sync.RWMutex

	items        []Item
	currentIndex int
	playIntent   bool
	repeat       bool
	shuffle      bool

	stats Stats

	subscribers map[int]func(State)
	nextSubID   int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		currentIndex: -1,
		subscribers:  make(map[int]func(State)),
	}
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Add appends item unless an item with the same ID is already queued.
// It never moves the current pointer or starts playback.
func (s *Store) Add(item Item) bool {
	s.mu.Lock()
	if s.indexOfLocked(item.ID) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items, item)
	s.stats.TotalAdded++
	if len(s.items) > s.stats.PeakSize {
		s.stats.PeakSize = len(s.items)
	}
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// Remove deletes the item with the given ID. Removing at or before the
// current position moves the pointer down by one, floored at 0.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.stats.TotalRemoved++

	switch {
	case len(s.items) == 0:
		s.currentIndex = -1
	case s.currentIndex >= 0 && idx <= s.currentIndex:
		s.currentIndex = max(s.currentIndex-1, 0)
	}
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// Clear empties the queue and drops play intent.
func (s *Store) Clear() {
	s.mu.Lock()
	s.stats.TotalRemoved += int64(len(s.items))
	s.items = nil
	s.currentIndex = -1
	s.playIntent = false
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
}

// Reorder moves the item at from to position to. The current pointer keeps
// referring to the same item.
func (s *Store) Reorder(from, to int) error {
	s.mu.Lock()
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return fmt.Errorf("reorder %d to %d: %w", from, to, ErrIndexOutOfRange)
	}
	if from == to {
		s.mu.Unlock()
		return nil
	}

	moved := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	s.items = append(s.items[:to], append([]Item{moved}, s.items[to:]...)...)

	cur := s.currentIndex
	switch {
	case cur == from:
		s.currentIndex = to
	case from < cur && to >= cur:
		s.currentIndex = cur - 1
	case from > cur && to <= cur:
		s.currentIndex = cur + 1
	}
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetCurrentIndex jumps to i. Valid values are -1 through Len()-1.
func (s *Store) SetCurrentIndex(i int) error {
	s.mu.Lock()
	if i < -1 || i >= len(s.items) {
		s.mu.Unlock()
		return fmt.Errorf("set current %d: %w", i, ErrIndexOutOfRange)
	}
	s.currentIndex = i
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// PlayFrom selects item i and sets play intent.
func (s *Store) PlayFrom(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.items) {
		s.mu.Unlock()
		return fmt.Errorf("play from %d: %w", i, ErrIndexOutOfRange)
	}
	s.currentIndex = i
	s.playIntent = true
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// EnsureCurrent selects the first item when the queue is non-empty and
// nothing is selected. It reports whether the selection changed.
func (s *Store) EnsureCurrent() bool {
	s.mu.Lock()
	if s.currentIndex >= 0 || len(s.items) == 0 {
		s.mu.Unlock()
		return false
	}
	s.currentIndex = 0
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// Advance moves to the next item. At the end it wraps when repeat is on;
// otherwise the pointer stays put, play intent is cleared and false is
// returned.
func (s *Store) Advance() bool {
	return s.step(1)
}

// Retreat moves to the previous item with the same boundary rules as
// Advance.
func (s *Store) Retreat() bool {
	return s.step(-1)
}

func (s *Store) step(delta int) bool {
	s.mu.Lock()
	n := len(s.items)
	if n == 0 {
		s.playIntent = false
		s.mu.Unlock()
		return false
	}

	moved := true
	next := s.currentIndex + delta
	switch {
	case s.currentIndex < 0:
		next = 0
	case next >= n:
		if s.repeat {
			next = 0
		} else {
			next = n - 1
			moved = false
		}
	case next < 0:
		if s.repeat {
			next = n - 1
		} else {
			next = 0
			moved = false
		}
	}

	s.currentIndex = next
	if !moved {
		s.playIntent = false
	}
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return moved
}

// SetPlayIntent records whether the queue wants to be playing.
func (s *Store) SetPlayIntent(on bool) {
	s.mu.Lock()
	s.playIntent = on
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
}

// SetRepeat enables or disables wraparound at the ends.
func (s *Store) SetRepeat(on bool) {
	s.mu.Lock()
	s.repeat = on
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
}

// ToggleShuffle flips the shuffle flag. Ordering is not affected.
func (s *Store) ToggleShuffle() bool {
	s.mu.Lock()
	s.shuffle = !s.shuffle
	on := s.shuffle
	s.changedLocked()
	s.mu.Unlock()

	s.notify()
	return on
}

// IsPresent reports whether an item with id is queued.
func (s *Store) IsPresent(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(id) >= 0
}

// Current returns the item at the current position.
func (s *Store) Current() (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentIndex < 0 {
		return Item{}, false
	}
	return s.items[s.currentIndex], true
}

// CurrentIndex returns the current position, -1 when unset.
func (s *Store) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// PlayIntent reports whether the queue wants to be playing.
func (s *Store) PlayIntent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playIntent
}

// Items returns a copy of the queued items in playback order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of queued items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot returns a copy of the whole queue state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Stats returns queue activity counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Store) snapshotLocked() State {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return State{
		Items:        items,
		CurrentIndex: s.currentIndex,
		PlayIntent:   s.playIntent,
		Repeat:       s.repeat,
		Shuffle:      s.shuffle,
	}
}

func (s *Store) indexOfLocked(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) changedLocked() {
	s.stats.LastChange = time.Now()
}

// notify runs subscribers outside the lock so they may call back into the
// store.
func (s *Store) notify() {
	s.mu.RLock()
	if len(s.subscribers) == 0 {
		s.mu.RUnlock()
		return
	}
	state := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(state)
	}
}
