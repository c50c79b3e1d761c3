package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lexio-app/lexio/internal/apperr"
)

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"unauthorized", 401, `{"error":"bad key"}`, apperr.KindConfiguration, "OpenAI API key is invalid or missing"},
		{"rate limited", 429, `{"error":{"message":"slow down"}}`, apperr.KindRateLimit, "rate limit"},
		{"quota", 429, `{"error":{"message":"You exceeded your current quota"}}`, apperr.KindQuota, "quota"},
		{"billing", 429, `billing hard limit reached`, apperr.KindQuota, "billing"},
		{"server error string", 500, `{"error":"boom"}`, apperr.KindProvider, "OpenAI API error (500): boom"},
		{"detail object", 400, `{"detail":{"status":"x","message":"voice not found"}}`, apperr.KindProvider, "voice not found"},
		{"plain text", 502, `upstream down`, apperr.KindProvider, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tt.status,
				Body:       io.NopCloser(strings.NewReader(tt.body)),
			}
			err := DecodeError("openai", resp)
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if DisplayName("elevenlabs") != "ElevenLabs" {
		t.Error("unexpected display name for elevenlabs")
	}
	if DisplayName("other") != "other" {
		t.Error("unknown providers keep their name")
	}
}

func TestClientHeadersAndOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer k")
	c := New("test", "https://unused", headers, WithBaseURL(server.URL+"/"), WithRateLimit(0))
	if c.BaseURL() != server.URL {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", c.BaseURL())
	}

	resp, err := c.PostJSON(context.Background(), "/x", map[string]string{"a": "b"}, "")
	if err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	var out struct{ OK bool }
	if err := ReadJSON(resp, &out); err != nil || !out.OK {
		t.Errorf("ReadJSON() = %+v, %v", out, err)
	}
}

func TestClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New("firecrawl", url, nil, WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Get(context.Background(), "/")
	if !errors.Is(err, apperr.ErrProvider) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestClientRateLimitHonorsContext(t *testing.T) {
	c := New("test", "http://127.0.0.1:0", nil, WithRateLimit(1))
	// Drain the single burst token.
	c.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Get(ctx, "/"); err == nil {
		t.Error("expected cancelled wait to fail")
	}
}
