package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"configuration", Configuration("openai", "missing key"), ErrConfiguration, true},
		{"validation", Validation("bad url"), ErrValidation, true},
		{"provider", Provider("firecrawl", 502, "bad gateway", nil), ErrProvider, true},
		{"rate limit is provider", RateLimit("openai", 429, ""), ErrProvider, true},
		{"rate limit", RateLimit("openai", 429, ""), ErrRateLimit, true},
		{"quota is provider", Quota("openai", 429, ""), ErrProvider, true},
		{"quota is not rate limit", Quota("openai", 429, ""), ErrRateLimit, false},
		{"playback", Playback("", nil), ErrPlayback, true},
		{"wrapped", fmt.Errorf("synthesize: %w", RateLimit("elevenlabs", 429, "")), ErrRateLimit, true},
		{"validation is not provider", Validation("x"), ErrProvider, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"provider passes message through", Provider("elevenlabs", 400, "voice not found", nil), "voice not found"},
		{"provider falls back to cause", Provider("elevenlabs", 0, "", errors.New("dial tcp: refused")), "dial tcp: refused"},
		{"rate limit guidance", RateLimit("openai", 429, "slow down"), "Rate limit exceeded. Please try again in a moment."},
		{"quota", Quota("openai", 429, ""), "API quota exceeded or billing issue"},
		{"playback default", Playback("", nil), "Failed to play audio"},
		{"plain error", errors.New("boom"), "boom"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := Provider("firecrawl", 500, "upstream failed", nil)
	if got := err.Error(); got != "firecrawl: upstream failed" {
		t.Errorf("Error() = %q", got)
	}
	if got := Validation("Valid URL is required").Error(); got != "Valid URL is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("wrap: %w", Quota("openai", 429, ""))); got != KindQuota {
		t.Errorf("KindOf() = %v, want %v", got, KindQuota)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf() = %v, want %v", got, KindUnknown)
	}
}

func TestRetryable(t *testing.T) {
	if !RateLimit("openai", 429, "").Retryable() {
		t.Error("rate limit should be retryable")
	}
	if !Provider("openai", 503, "", nil).Retryable() {
		t.Error("5xx should be retryable")
	}
	if Validation("x").Retryable() {
		t.Error("validation should not be retryable")
	}
}
