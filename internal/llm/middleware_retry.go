package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"commitscribe/internal/llmclient"
	"commitscribe/internal/notify"
)

// jitterSpan randomizes backoff so parallel workers that were throttled
// together do not all come back in the same instant.
const jitterSpan = 300 * time.Millisecond

// throttleWarnEvery bounds how often the user hears about throttling.
// A whole generation run shares one notice window.
const throttleWarnEvery = 60 * time.Second

// RetryPolicy controls how rate-limited calls are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of Chat attempts, clamped to [2,4].
	MaxAttempts int
	// BaseDelay is the first backoff step; doubled per attempt.
	BaseDelay time.Duration
	// MaxDelay caps any single wait, hint or not.
	MaxDelay time.Duration
}

// DefaultRetryPolicy is what the registry uses unless a provider
// profile overrides it.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   1500 * time.Millisecond,
	MaxDelay:    60 * time.Second,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.MaxAttempts < 2 {
		p.MaxAttempts = 2
	}
	if p.MaxAttempts > 4 {
		p.MaxAttempts = 4
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryPolicy.MaxDelay
	}
	return p
}

// RetryOnRateLimit retries Chat when the provider throttles. Every other
// error (auth, config, permanent, canceled context) passes through on
// the first occurrence. The wait honors the provider's retry-after hint
// when one was sent, otherwise exponential backoff from BaseDelay.
func RetryOnRateLimit(policy RetryPolicy, n notify.Notifier) Middleware {
	policy = policy.withDefaults()
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &retrying{next: next, policy: policy, notify: n}
	}
}

type retrying struct {
	next   llmclient.LLMClient
	policy RetryPolicy
	notify notify.Notifier
}

func (r *retrying) Name() string  { return r.next.Name() }
func (r *retrying) Model() string { return r.next.Model() }

func (r *retrying) CountTokens(text string) int { return r.next.CountTokens(text) }
func (r *retrying) Close() error                { return r.next.Close() }

func (r *retrying) Chat(ctx context.Context, msgs []llmclient.Message) (*llmclient.Result, error) {
	var last error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		res, err := r.next.Chat(ctx, msgs)
		if err == nil {
			return res, nil
		}
		last = err
		var rle *llmclient.RateLimitError
		if !errors.As(err, &rle) {
			// Only throttling is transient enough to be worth a retry.
			return nil, err
		}
		if attempt == r.policy.MaxAttempts-1 {
			break
		}
		wait := r.backoff(attempt, rle.RetryAfter)
		warnThrottled(r.notify, r.next.Name(), wait)
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, last
}

// backoff picks the wait before attempt+1: the provider hint when one
// was given, exponential otherwise, plus jitter, capped at MaxDelay.
func (r *retrying) backoff(attempt int, hint time.Duration) time.Duration {
	wait := r.policy.BaseDelay * time.Duration(1<<attempt)
	if hint > 0 {
		wait = hint
	}
	wait += rand.N(jitterSpan)
	if wait > r.policy.MaxDelay {
		wait = r.policy.MaxDelay
	}
	return wait
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// throttleWarn is process-wide: all wrapped clients share the window.
var throttleWarn struct {
	mu   sync.Mutex
	last time.Time
}

func warnThrottled(n notify.Notifier, provider string, wait time.Duration) {
	if n == nil {
		return
	}
	throttleWarn.mu.Lock()
	defer throttleWarn.mu.Unlock()
	if time.Since(throttleWarn.last) < throttleWarnEvery {
		return
	}
	throttleWarn.last = time.Now()
	n.Warn(fmt.Sprintf("%s is throttling requests, backing off %s. Lowering the parallelism setting may avoid this.",
		provider, wait.Round(time.Millisecond)))
}
