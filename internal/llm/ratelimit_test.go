package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitscribe/internal/llmclient"
)

// fast fake client that returns immediately
type fastClient struct{}

func (f *fastClient) Name() string                { return "fast" }
func (f *fastClient) Model() string               { return "fast-1" }
func (f *fastClient) Close() error                { return nil }
func (f *fastClient) CountTokens(text string) int { return len(strings.Fields(text)) }
func (f *fastClient) Chat(ctx context.Context, msgs []llmclient.Message) (*llmclient.Result, error) {
	return &llmclient.Result{Text: "{}"}, nil
}

// spy records timestamps when requests reach the inner client
type spy struct{ times []time.Time }
type spyingClient struct {
	next llmclient.LLMClient
	rec  *spy
}

func (s *spyingClient) Name() string                { return s.next.Name() }
func (s *spyingClient) Model() string               { return s.next.Model() }
func (s *spyingClient) Close() error                { return s.next.Close() }
func (s *spyingClient) CountTokens(text string) int { return s.next.CountTokens(text) }
func (s *spyingClient) Chat(ctx context.Context, msgs []llmclient.Message) (*llmclient.Result, error) {
	s.rec.times = append(s.rec.times, time.Now())
	return s.next.Chat(ctx, msgs)
}

func ping() []llmclient.Message {
	return []llmclient.Message{{Role: llmclient.RoleUser, Content: "p"}}
}

func TestRate_RPS_2PerSecond_Burst1_Spacing(t *testing.T) {
	// Expect ~>=500ms spacing after the first call when rps=2 and burst=1.
	base := &fastClient{}
	rec := &spy{}
	cli := Wrap(&spyingClient{next: base, rec: rec}, RateLimit(2, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	// Two sequential calls; first should pass immediately, second should wait ~500ms.
	_, err := cli.Chat(ctx, ping())
	require.NoError(t, err)
	_, err = cli.Chat(ctx, ping())
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 450*time.Millisecond, "expected throttling")
	assert.Len(t, rec.times, 2, "two calls should reach inner client")
}

func TestRate_RPS_2PerSecond_Burst2_FirstTwoImmediate(t *testing.T) {
	// With burst=2, first two calls should be near-instant; third should be delayed.
	base := &fastClient{}
	cli := RateLimit(2, 2)(base)
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	_, err := cli.Chat(ctx, ping())
	require.NoError(t, err)
	_, err = cli.Chat(ctx, ping())
	require.NoError(t, err)
	firstTwo := time.Since(start)

	// Third call should incur ~>=500ms delay at 2 rps.
	start3 := time.Now()
	_, err = cli.Chat(ctx, ping())
	require.NoError(t, err)
	third := time.Since(start3)

	assert.Less(t, firstTwo, 100*time.Millisecond, "first two should be near-instant")
	assert.GreaterOrEqual(t, third, 450*time.Millisecond, "third call expected throttling")
}

func TestRate_DisabledPassesThrough(t *testing.T) {
	base := &fastClient{}
	cli := RateLimit(0, 0)(base)
	t.Cleanup(func() { _ = cli.Close() })

	start := time.Now()
	for i := 0; i < 20; i++ {
		_, err := cli.Chat(context.Background(), ping())
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "disabled limiter must not throttle")
}

func TestRate_CancelWhileWaiting(t *testing.T) {
	base := &fastClient{}
	cli := RateLimit(0.2, 1)(base) // one token, then a 5s refill
	t.Cleanup(func() { _ = cli.Close() })

	_, err := cli.Chat(context.Background(), ping())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = cli.Chat(ctx, ping())
	require.Error(t, err, "second call should fail while waiting for a token")
	assert.True(t, llmclient.IsCancel(err), "wait abort must surface as cancellation, got %v", err)
	assert.Less(t, time.Since(start), time.Second, "cancellation should not wait out the refill")
}
