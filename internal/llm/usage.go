package llm

import (
	"context"

	"commitscribe/internal/llmclient"
)

// UsageSink receives one record per provider call, attempts included.
// Implementations must be safe for concurrent use.
type UsageSink interface {
	Record(provider, model, stage string, usage llmclient.Usage, callErr error)
}

// WithUsage reports every Chat outcome to sink. Keep it innermost when
// wrapping so retried attempts are each recorded.
func WithUsage(sink UsageSink) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &usageTracked{next: next, sink: sink}
	}
}

type usageTracked struct {
	next llmclient.LLMClient
	sink UsageSink
}

func (u *usageTracked) Name() string  { return u.next.Name() }
func (u *usageTracked) Model() string { return u.next.Model() }

func (u *usageTracked) CountTokens(text string) int { return u.next.CountTokens(text) }
func (u *usageTracked) Close() error                { return u.next.Close() }

func (u *usageTracked) Chat(ctx context.Context, msgs []llmclient.Message) (*llmclient.Result, error) {
	res, err := u.next.Chat(ctx, msgs)
	if u.sink != nil {
		var usage llmclient.Usage
		if res != nil {
			usage = res.Usage
		}
		u.sink.Record(u.next.Name(), u.next.Model(), StageFrom(ctx), usage, err)
	}
	return res, err
}
