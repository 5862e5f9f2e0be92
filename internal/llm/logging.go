package llm

import (
	"context"
	"log"
	"time"

	"commitscribe/internal/llmclient"
)

// WithLogging logs request size and errors. Provide a custom logger or
// nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  *log.Logger
}

func (l *logging) Name() string  { return l.next.Name() }
func (l *logging) Model() string { return l.next.Model() }

func (l *logging) CountTokens(text string) int { return l.next.CountTokens(text) }
func (l *logging) Close() error                { return l.next.Close() }

func (l *logging) Chat(ctx context.Context, msgs []llmclient.Message) (*llmclient.Result, error) {
	var size int
	for _, m := range msgs {
		size += len(m.Content)
	}
	stage := StageFrom(ctx)
	l.log.Printf("LLM request (%s): %s/%s, %d bytes", stage, l.next.Name(), l.next.Model(), size)
	start := time.Now()
	res, err := l.next.Chat(ctx, msgs)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", stage, err)
		return nil, err
	}
	l.log.Printf("LLM done (%s): %d tokens in %s", stage, res.Usage.TotalTokens, time.Since(start).Round(time.Millisecond))
	return res, nil
}
