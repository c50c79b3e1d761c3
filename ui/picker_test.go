package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"

	"github.com/lexio-app/lexio/internal/provider/elevenlabs"
)

func TestCycleSpeed(t *testing.T) {
	tests := []struct {
		cur  float64
		dir  int
		want float64
	}{
		{1.0, 1, 1.1},
		{1.0, -1, 0.9},
		{1.2, 1, 0.7},
		{0.7, -1, 1.2},
		{0.95, 1, 1.0},
		{1.1, -1, 1.0},
	}
	for _, tt := range tests {
		if got := cycleSpeed(tt.cur, tt.dir); got != tt.want {
			t.Errorf("cycleSpeed(%v, %d) = %v, want %v", tt.cur, tt.dir, got, tt.want)
		}
	}
}

func TestKeyMapHelp(t *testing.T) {
	km := newKeyMap()
	seen := map[string]bool{}
	for _, col := range km.FullHelp() {
		for _, b := range col {
			for _, k := range b.Keys() {
				if seen[k] {
					t.Errorf("key %q bound twice", k)
				}
				seen[k] = true
			}
		}
	}
	for _, k := range []string{" ", "n", "p", "left", "right", "+", "-", "a", "s", "x", "K", "J", "r", "v", "c", "?", "q"} {
		if !seen[k] {
			t.Errorf("key %q is not bound", k)
		}
	}
	if !key.Matches(press(" "), km.PlayPause) {
		t.Error("space should match play/pause")
	}
}

func TestVoicePickerFilter(t *testing.T) {
	p := newVoicePicker(elevenlabs.PopularVoices)
	_ = p.open(elevenlabs.PopularVoices[3].ID)

	if got, _ := p.selected(); got.ID != elevenlabs.PopularVoices[3].ID {
		t.Errorf("cursor starts on %q, want the current voice", got.Name)
	}

	p, _ = p.update(press("stuart"))
	got, ok := p.selected()
	if !ok || got.Name != "Stuart" {
		t.Errorf("selected %q after filtering", got.Name)
	}

	p, _ = p.update(press("zzqx"))
	if _, ok := p.selected(); ok {
		t.Error("nothing should match")
	}
}

func TestVoicePickerNavigation(t *testing.T) {
	p := newVoicePicker(elevenlabs.PopularVoices)
	_ = p.open("")

	p, _ = p.update(press("down"))
	p, _ = p.update(press("down"))
	if got, _ := p.selected(); got.Name != elevenlabs.PopularVoices[2].Name {
		t.Errorf("selected %q", got.Name)
	}
	p, _ = p.update(press("up"))
	if got, _ := p.selected(); got.Name != elevenlabs.PopularVoices[1].Name {
		t.Errorf("selected %q", got.Name)
	}
}

func TestHighlightMatches(t *testing.T) {
	if got := highlightMatches("Finn", nil); got != "Finn" {
		t.Errorf("highlightMatches = %q", got)
	}
	if got := highlightMatches("Finn", []int{0, 1, 40}); got != "Finn" {
		t.Errorf("with an ASCII profile styling is a no-op, got %q", got)
	}
}
