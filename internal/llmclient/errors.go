package llmclient

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyResponse is returned when a provider answered 200 with no usable text.
var ErrEmptyResponse = errors.New("llmclient: empty model response")

// RateLimitError is a provider 429. RetryAfter is the provider's explicit
// hint when it sent one; zero means the caller should fall back to its own
// backoff schedule.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// AuthError is a provider 401/403: the API key is missing server-side trust.
type AuthError struct {
	Provider string
	Status   int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed (status %d)", e.Provider, e.Status)
}

// ConfigError reports unusable local configuration: no API key, no model
// selected, or a request the provider rejected as malformed.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsCancel reports whether err is a cancellation, by type. Cancellation is a
// distinct outcome everywhere in this codebase, never inferred from error
// message text.
func IsCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsConfig reports whether err means the provider cannot be used until the
// user fixes configuration (bad key, bad model). These are never retried.
func IsConfig(err error) bool {
	var ae *AuthError
	var ce *ConfigError
	return errors.As(err, &ae) || errors.As(err, &ce)
}
