// Package apperr defines the error taxonomy shared by the provider clients,
// the recommender and the playback session.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for user-facing reporting.
type Kind int

const (
	// KindUnknown is used for errors that did not originate in this module.
	KindUnknown Kind = iota
	// KindConfiguration indicates a missing or invalid provider credential.
	KindConfiguration
	// KindValidation indicates bad input rejected before any network call.
	KindValidation
	// KindProvider indicates a non-2xx reply or transport failure from an external service.
	KindProvider
	// KindRateLimit indicates the provider throttled the request.
	KindRateLimit
	// KindQuota indicates the provider account ran out of quota or billing.
	KindQuota
	// KindPlayback indicates a local decode or playback-start failure.
	KindPlayback
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindProvider:
		return "provider"
	case KindRateLimit:
		return "rate_limit"
	case KindQuota:
		return "quota"
	case KindPlayback:
		return "playback"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is. Every *Error matches the sentinel of its
// kind; rate limit and quota errors also match ErrProvider.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrProvider      = errors.New("provider error")
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrQuota         = errors.New("quota exceeded")
	ErrPlayback      = errors.New("playback error")
)

// Error carries a classified failure with the provider that produced it.
type Error struct {
	Kind     Kind   // Classification
	Provider string // "firecrawl", "openai", "elevenlabs" or empty for local errors
	Status   int    // HTTP status when the error came from a provider
	Message  string // Message passed through from the provider when available
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, msg)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrProvider:
		return e.Kind == KindProvider || e.Kind == KindRateLimit || e.Kind == KindQuota
	case ErrRateLimit:
		return e.Kind == KindRateLimit
	case ErrQuota:
		return e.Kind == KindQuota
	case ErrPlayback:
		return e.Kind == KindPlayback
	}
	return false
}

// UserMessage returns the message shown to the user for this error.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindConfiguration:
		if e.Message != "" {
			return e.Message
		}
		return "A required API key is missing or invalid"
	case KindRateLimit:
		return "Rate limit exceeded. Please try again in a moment."
	case KindQuota:
		return "API quota exceeded or billing issue"
	case KindPlayback:
		if e.Message != "" {
			return e.Message
		}
		return "Failed to play audio"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "Something went wrong"
}

// Retryable reports whether a user-initiated retry may succeed later.
// Nothing in this module retries on its own.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimit || (e.Kind == KindProvider && e.Status >= 500)
}

// Configuration returns a missing-credential error for provider.
func Configuration(provider, msg string) *Error {
	return &Error{Kind: KindConfiguration, Provider: provider, Message: msg}
}

// Validation returns an input validation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Provider returns a generic provider failure.
func Provider(provider string, status int, msg string, cause error) *Error {
	return &Error{Kind: KindProvider, Provider: provider, Status: status, Message: msg, Cause: cause}
}

// RateLimit returns a throttling error.
func RateLimit(provider string, status int, msg string) *Error {
	return &Error{Kind: KindRateLimit, Provider: provider, Status: status, Message: msg}
}

// Quota returns a quota or billing error.
func Quota(provider string, status int, msg string) *Error {
	return &Error{Kind: KindQuota, Provider: provider, Status: status, Message: msg}
}

// Playback returns a local audio error.
func Playback(msg string, cause error) *Error {
	return &Error{Kind: KindPlayback, Message: msg, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing message for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return err.Error()
}
