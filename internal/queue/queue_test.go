package queue

import (
	"errors"
	"math/rand"
	"testing"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func filled(idList ...string) *Store {
	s := New()
	for _, id := range idList {
		s.Add(Item{ID: id, Title: id, Content: "content of " + id})
	}
	return s
}

func TestAddIsIdempotent(t *testing.T) {
	s := New()
	if !s.Add(Item{ID: "summary", Content: "first"}) {
		t.Fatal("first Add returned false")
	}
	s.Add(Item{ID: "section-0"})
	if s.Add(Item{ID: "summary", Content: "second"}) {
		t.Error("duplicate Add returned true")
	}

	if got := ids(s.Items()); !equalIDs(got, []string{"summary", "section-0"}) {
		t.Errorf("Items() = %v", got)
	}
	if it := s.Items()[0]; it.Content != "first" {
		t.Errorf("content replaced by duplicate add: %q", it.Content)
	}
}

func TestAddIsPassive(t *testing.T) {
	s := filled("a", "b")
	if s.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d after adds, want -1", s.CurrentIndex())
	}
	if s.PlayIntent() {
		t.Error("Add set play intent")
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name      string
		items     []string
		current   int
		remove    string
		wantItems []string
		wantIndex int
	}{
		{"before current", []string{"section-0", "section-1"}, 1, "section-0", []string{"section-1"}, 0},
		{"current at zero", []string{"a", "b", "c"}, 0, "a", []string{"b", "c"}, 0},
		{"current in middle", []string{"a", "b", "c"}, 1, "b", []string{"a", "c"}, 0},
		{"after current", []string{"a", "b", "c"}, 0, "c", []string{"a", "b"}, 0},
		{"last item", []string{"a"}, 0, "a", nil, -1},
		{"unset stays unset", []string{"a", "b"}, -1, "a", []string{"b"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filled(tt.items...)
			if err := s.SetCurrentIndex(tt.current); err != nil {
				t.Fatal(err)
			}
			if !s.Remove(tt.remove) {
				t.Fatalf("Remove(%q) = false", tt.remove)
			}
			if got := ids(s.Items()); !equalIDs(got, tt.wantItems) {
				t.Errorf("Items() = %v, want %v", got, tt.wantItems)
			}
			if got := s.CurrentIndex(); got != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", got, tt.wantIndex)
			}
		})
	}
}

func TestRemoveMissing(t *testing.T) {
	s := filled("a")
	if s.Remove("zzz") {
		t.Error("Remove of missing id returned true")
	}
}

func TestClear(t *testing.T) {
	s := filled("a", "b")
	_ = s.PlayFrom(1)
	s.Clear()

	if s.Len() != 0 || s.CurrentIndex() != -1 || s.PlayIntent() {
		t.Errorf("after Clear: len=%d current=%d intent=%v", s.Len(), s.CurrentIndex(), s.PlayIntent())
	}
}

func TestReorderKeepsCurrent(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		from, to  int
		wantItems []string
		wantIndex int
	}{
		{"move current forward", 1, 1, 3, []string{"a", "c", "d", "b"}, 3},
		{"move current back", 2, 2, 0, []string{"c", "a", "b", "d"}, 0},
		{"cross current forward", 1, 0, 2, []string{"b", "c", "a", "d"}, 0},
		{"cross current backward", 1, 3, 0, []string{"d", "a", "b", "c"}, 2},
		{"land on current from before", 2, 0, 2, []string{"b", "c", "a", "d"}, 1},
		{"land on current from after", 1, 3, 1, []string{"a", "d", "b", "c"}, 2},
		{"unrelated move", 0, 2, 3, []string{"a", "b", "d", "c"}, 0},
		{"no current", -1, 0, 3, []string{"b", "c", "d", "a"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filled("a", "b", "c", "d")
			_ = s.SetCurrentIndex(tt.current)
			before, _ := s.Current()

			if err := s.Reorder(tt.from, tt.to); err != nil {
				t.Fatalf("Reorder failed: %v", err)
			}
			if got := ids(s.Items()); !equalIDs(got, tt.wantItems) {
				t.Errorf("Items() = %v, want %v", got, tt.wantItems)
			}
			if got := s.CurrentIndex(); got != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", got, tt.wantIndex)
			}
			if after, ok := s.Current(); ok && after.ID != before.ID {
				t.Errorf("current item changed from %q to %q", before.ID, after.ID)
			}
		})
	}
}

func TestReorderOutOfRange(t *testing.T) {
	s := filled("a", "b")
	if err := s.Reorder(0, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Reorder(0, 2) error = %v", err)
	}
	if err := s.Reorder(-1, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Reorder(-1, 0) error = %v", err)
	}
}

func TestSetCurrentIndexBounds(t *testing.T) {
	s := filled("a", "b")
	tests := []struct {
		i       int
		wantErr bool
	}{
		{-2, true},
		{-1, false},
		{0, false},
		{1, false},
		{2, true},
	}
	for _, tt := range tests {
		err := s.SetCurrentIndex(tt.i)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetCurrentIndex(%d) error = %v, wantErr %v", tt.i, err, tt.wantErr)
		}
	}
}

func TestAdvanceBoundary(t *testing.T) {
	tests := []struct {
		name       string
		repeat     bool
		wantMoved  bool
		wantIndex  int
		wantIntent bool
	}{
		{"clamp and stop", false, false, 2, false},
		{"wrap", true, true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filled("a", "b", "c")
			s.SetRepeat(tt.repeat)
			_ = s.PlayFrom(2)

			if moved := s.Advance(); moved != tt.wantMoved {
				t.Errorf("Advance() = %v, want %v", moved, tt.wantMoved)
			}
			if got := s.CurrentIndex(); got != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", got, tt.wantIndex)
			}
			if got := s.PlayIntent(); got != tt.wantIntent {
				t.Errorf("PlayIntent() = %v, want %v", got, tt.wantIntent)
			}
		})
	}
}

func TestRetreatBoundary(t *testing.T) {
	s := filled("a", "b", "c")
	_ = s.PlayFrom(0)
	if s.Retreat() {
		t.Error("Retreat at start without repeat moved")
	}
	if s.CurrentIndex() != 0 || s.PlayIntent() {
		t.Errorf("current=%d intent=%v", s.CurrentIndex(), s.PlayIntent())
	}

	s.SetRepeat(true)
	if !s.Retreat() || s.CurrentIndex() != 2 {
		t.Errorf("Retreat with repeat: current=%d, want 2", s.CurrentIndex())
	}
}

func TestAdvanceFromUnset(t *testing.T) {
	s := filled("a", "b")
	if !s.Advance() || s.CurrentIndex() != 0 {
		t.Errorf("Advance from -1: current=%d, want 0", s.CurrentIndex())
	}
	if New().Advance() {
		t.Error("Advance on empty queue moved")
	}
}

func TestEnsureCurrent(t *testing.T) {
	s := New()
	if s.EnsureCurrent() {
		t.Error("EnsureCurrent on empty queue changed selection")
	}
	s.Add(Item{ID: "a"})
	if !s.EnsureCurrent() || s.CurrentIndex() != 0 {
		t.Errorf("EnsureCurrent: current=%d", s.CurrentIndex())
	}
	if s.EnsureCurrent() {
		t.Error("EnsureCurrent changed an existing selection")
	}
}

func TestToggleShuffleKeepsOrder(t *testing.T) {
	s := filled("a", "b", "c")
	if !s.ToggleShuffle() {
		t.Error("ToggleShuffle() = false, want true")
	}
	if got := ids(s.Items()); !equalIDs(got, []string{"a", "b", "c"}) {
		t.Errorf("Items() = %v after shuffle toggle", got)
	}
	if !s.Snapshot().Shuffle {
		t.Error("Snapshot().Shuffle = false")
	}
}

func TestSubscribe(t *testing.T) {
	s := New()
	var got []State
	unsubscribe := s.Subscribe(func(st State) {
		got = append(got, st)
	})

	s.Add(Item{ID: "a"})
	s.Add(Item{ID: "a"}) // duplicate, no notification
	_ = s.SetCurrentIndex(0)
	unsubscribe()
	s.Add(Item{ID: "b"})

	if len(got) != 2 {
		t.Fatalf("received %d notifications, want 2", len(got))
	}
	if cur, ok := got[1].Current(); !ok || cur.ID != "a" {
		t.Errorf("second snapshot current = %+v, %v", cur, ok)
	}
}

func TestInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New()
	idPool := []string{"summary", "section-0", "section-1", "section-2", "section-3", "section-4"}

	for step := 0; step < 2000; step++ {
		before, hadCurrent := s.Current()
		reordered := false

		switch rng.Intn(5) {
		case 0, 1:
			s.Add(Item{ID: idPool[rng.Intn(len(idPool))]})
		case 2:
			s.Remove(idPool[rng.Intn(len(idPool))])
		case 3:
			if n := s.Len(); n > 0 {
				_ = s.Reorder(rng.Intn(n), rng.Intn(n))
				reordered = true
			}
		case 4:
			if n := s.Len(); n > 0 {
				_ = s.SetCurrentIndex(rng.Intn(n+1) - 1)
			}
		}

		cur := s.CurrentIndex()
		if cur < -1 || cur >= s.Len() {
			t.Fatalf("step %d: currentIndex %d invalid for len %d", step, cur, s.Len())
		}
		if s.Len() == 0 && cur != -1 {
			t.Fatalf("step %d: empty queue with currentIndex %d", step, cur)
		}
		if reordered && hadCurrent {
			after, _ := s.Current()
			if after.ID != before.ID {
				t.Fatalf("step %d: reorder changed current from %q to %q", step, before.ID, after.ID)
			}
		}
	}
}

func TestStats(t *testing.T) {
	s := filled("a", "b", "c")
	if !s.Remove("b") {
		t.Fatal("Remove(b) returned false")
	}
	s.Clear()
	s.Add(Item{ID: "d"})

	st := s.Stats()
	if st.TotalAdded != 4 || st.TotalRemoved != 3 || st.PeakSize != 3 {
		t.Errorf("Stats() = %+v, want 4 added, 3 removed, peak 3", st)
	}
	if st.LastChange.IsZero() {
		t.Error("LastChange not recorded")
	}
}
