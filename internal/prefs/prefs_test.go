package prefs

import (
	"context"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestVoiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	if v, err := s.Voice(ctx); err != nil || v != "" {
		t.Fatalf("Voice() on empty store = %q, %v", v, err)
	}

	if err := s.SetVoice(ctx, "voice-a"); err != nil {
		t.Fatalf("SetVoice() error = %v", err)
	}
	if err := s.SetVoice(ctx, "voice-b"); err != nil {
		t.Fatalf("SetVoice() error = %v", err)
	}
	if v, _ := s.Voice(ctx); v != "voice-b" {
		t.Errorf("Voice() = %q, want voice-b", v)
	}

	s.Close()
	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if v, _ := reopened.Voice(ctx); v != "voice-b" {
		t.Errorf("Voice() after reopen = %q, want voice-b", v)
	}
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	tests := []struct {
		key, value string
	}{
		{"a", "1"},
		{"b", ""},
		{VoiceKey, "4tRn1lSkEn13EVTuqb0g"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := s.Set(ctx, tt.key, tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, ok, err := s.Get(ctx, tt.key)
			if err != nil || !ok || got != tt.value {
				t.Errorf("Get(%q) = %q, %v, %v", tt.key, got, ok, err)
			}
		})
	}

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Error("missing key reported present")
	}
}
