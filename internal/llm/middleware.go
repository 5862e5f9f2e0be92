package llm

import (
	"context"

	"commitscribe/internal/llmclient"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, retries, logging, usage accounting).
type Middleware func(llmclient.LLMClient) llmclient.LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.LLMClient, mws ...Middleware) llmclient.LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

type ctxKeyStage struct{}

// WithStage tags ctx with the pipeline stage issuing the request, so
// middlewares can attribute log lines and usage records to it.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage tag set by WithStage, or "unknown".
func StageFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyStage{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
