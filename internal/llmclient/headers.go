package llmclient

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitHeaders represents normalized provider rate-limit signals.
type RateLimitHeaders struct {
	RetryAfter time.Duration

	LimitRequests     int
	LimitTokens       int
	RemainingRequests int
	RemainingTokens   int

	ResetRequests time.Duration
	ResetTokens   time.Duration
}

// ParseRateLimitHeaders reads the Retry-After and x-ratelimit-* response
// headers the OpenAI-compatible providers send (OpenAI, Groq).
func ParseRateLimitHeaders(h http.Header) RateLimitHeaders {
	var out RateLimitHeaders
	out.RetryAfter = parseRetryAfter(h.Get("retry-after"))
	out.LimitRequests = parseIntHeader(h.Get("x-ratelimit-limit-requests"))
	out.LimitTokens = parseIntHeader(h.Get("x-ratelimit-limit-tokens"))
	out.RemainingRequests = parseIntHeader(h.Get("x-ratelimit-remaining-requests"))
	out.RemainingTokens = parseIntHeader(h.Get("x-ratelimit-remaining-tokens"))
	out.ResetRequests = parseResetDuration(h.Get("x-ratelimit-reset-requests"))
	out.ResetTokens = parseResetDuration(h.Get("x-ratelimit-reset-tokens"))
	return out
}

// Hint converts the signals to a single wait duration: prefer the explicit
// Retry-After, then whichever budget is exhausted and has a reset time.
func (r RateLimitHeaders) Hint() time.Duration {
	if r.RetryAfter > 0 {
		return r.RetryAfter
	}
	if r.RemainingTokens == 0 && r.ResetTokens > 0 {
		return r.ResetTokens
	}
	if r.RemainingRequests == 0 && r.ResetRequests > 0 {
		return r.ResetRequests
	}
	return 0
}

// parseRetryAfter accepts the delta-seconds form ("30", "2.5"). The HTTP-date
// form is not sent by the providers this package talks to.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}

func parseIntHeader(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// parseResetDuration handles the "1m30s", "7.66s", "120ms" style values in
// x-ratelimit-reset-*. Bare numbers are taken as seconds.
func parseResetDuration(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}
