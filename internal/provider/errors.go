package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lexio-app/lexio/internal/apperr"
)

var displayNames = map[string]string{
	"firecrawl":  "Firecrawl",
	"openai":     "OpenAI",
	"elevenlabs": "ElevenLabs",
}

// DisplayName returns the user-facing spelling of a provider name.
func DisplayName(provider string) string {
	if d, ok := displayNames[provider]; ok {
		return d
	}
	return provider
}

// DecodeError consumes a non-2xx reply and classifies it. Throttling becomes
// a rate limit error, or a quota error when the body mentions quota or
// billing. A rejected key becomes a configuration error. Everything else is
// a provider error carrying the reply text.
func DecodeError(provider string, resp *http.Response) error {
	body := ReadBody(resp)
	msg := ErrorMessage(body)
	name := DisplayName(provider)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		lower := strings.ToLower(body)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return apperr.Quota(provider, resp.StatusCode, fmt.Sprintf("%s API quota exceeded or billing issue", name))
		}
		return apperr.RateLimit(provider, resp.StatusCode, fmt.Sprintf("%s API rate limit exceeded. Please try again in a moment.", name))
	case http.StatusUnauthorized:
		return apperr.Configuration(provider, fmt.Sprintf("%s API key is invalid or missing", name))
	}

	return apperr.Provider(provider, resp.StatusCode,
		fmt.Sprintf("%s API error (%d): %s", name, resp.StatusCode, msg), nil)
}

// ReadBody returns up to 64 KiB of the body as text and closes it.
func ReadBody(resp *http.Response) string {
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return strings.TrimSpace(string(data))
}

// ErrorMessage pulls the human-readable message out of the error shapes the
// providers use, falling back to the raw body.
func ErrorMessage(body string) string {
	var shape struct {
		Error  json.RawMessage `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &shape); err != nil {
		return body
	}
	for _, raw := range []json.RawMessage{shape.Error, shape.Detail} {
		if m := messageOf(raw); m != "" {
			return m
		}
	}
	return body
}

func messageOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return ""
}
