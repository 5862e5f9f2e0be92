package llm

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"commitscribe/internal/llmclient"
	"commitscribe/internal/notify"
)

// Profile describes how one provider is driven: its default model and
// how hard the client may push it.
type Profile struct {
	Provider string
	Model    string
	// RPS and Burst feed the client-side token bucket. Zero RPS disables it.
	RPS   float64
	Burst int
	Retry RetryPolicy
}

// profiles is the built-in provider table. Default models are the
// cheapest tier that still drafts reliable commit messages; free-tier
// providers get lower RPS and one extra retry.
var profiles = map[string]Profile{
	"openai":    {Provider: "openai", Model: "gpt-4o-mini", RPS: 3, Burst: 3, Retry: RetryPolicy{MaxAttempts: 3}},
	"groq":      {Provider: "groq", Model: "llama-3.3-70b-versatile", RPS: 0.5, Burst: 2, Retry: RetryPolicy{MaxAttempts: 4}},
	"anthropic": {Provider: "anthropic", Model: "claude-3-5-haiku-latest", RPS: 2, Burst: 2, Retry: RetryPolicy{MaxAttempts: 3}},
	"gemini":    {Provider: "gemini", Model: "gemini-2.0-flash", RPS: 2, Burst: 2, Retry: RetryPolicy{MaxAttempts: 3}},
}

// Providers lists the known provider names in stable order.
func Providers() []string {
	out := make([]string, 0, len(profiles))
	for name := range profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the profile for provider with an optional model
// override applied. Accepts env/CLI style inputs with accidental
// whitespace and mixed casing: " Gemini " resolves like "gemini".
func Resolve(provider, model string) (Profile, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	p, ok := profiles[name]
	if !ok {
		return Profile{}, &llmclient.ConfigError{Reason: fmt.Sprintf("unknown provider %q", provider)}
	}
	if m := strings.TrimSpace(model); m != "" {
		p.Model = m
	}
	return p, nil
}

// BuildOptions carries the cross-cutting pieces shared by every built
// client.
type BuildOptions struct {
	// APIKey overrides the provider's environment variable lookup.
	APIKey string
	// Model overrides the profile's default model.
	Model string
	// Attempts overrides the profile's retry attempts when non-zero.
	Attempts int
	Logger   *log.Logger
	Usage    UsageSink
	Notify   notify.Notifier
}

// Build constructs a ready-to-use client for provider: the raw client
// wrapped with logging, retry, rate limiting and usage accounting.
// Retry sits outside the limiter so every attempt re-acquires a token,
// and usage sits innermost so every attempt is recorded.
func Build(ctx context.Context, provider string, opts BuildOptions) (llmclient.LLMClient, error) {
	prof, err := Resolve(provider, opts.Model)
	if err != nil {
		return nil, err
	}
	if opts.Attempts != 0 {
		prof.Retry.MaxAttempts = opts.Attempts
	}
	inner, err := newProviderClient(ctx, prof, opts.APIKey)
	if err != nil {
		return nil, err
	}
	return Wrap(inner,
		WithLogging(opts.Logger),
		RetryOnRateLimit(prof.Retry, opts.Notify),
		RateLimit(prof.RPS, prof.Burst),
		WithUsage(opts.Usage),
	), nil
}

func newProviderClient(ctx context.Context, prof Profile, apiKey string) (llmclient.LLMClient, error) {
	switch prof.Provider {
	case "openai":
		return llmclient.NewOpenAIClient(apiKey, prof.Model)
	case "groq":
		return llmclient.NewGroqClient(apiKey, prof.Model)
	case "anthropic":
		return llmclient.NewAnthropicClient(apiKey, prof.Model)
	case "gemini":
		return llmclient.NewGeminiClient(ctx, apiKey, prof.Model)
	}
	return nil, &llmclient.ConfigError{Reason: fmt.Sprintf("unknown provider %q", prof.Provider)}
}
