package llmclient

import (
	"context"
	"sync"
)

// FakeClient returns scripted results for offline tests. Respond decides the
// outcome of each call; when nil, every call answers "{}". Calls are recorded
// and safe to inspect concurrently.
type FakeClient struct {
	Provider string
	ModelID  string
	PerCall  Usage
	Respond  func(call int, msgs []Message) (string, error)

	mu    sync.Mutex
	calls [][]Message
}

func (f *FakeClient) Name() string {
	if f.Provider == "" {
		return "fake"
	}
	return f.Provider
}

func (f *FakeClient) Model() string {
	if f.ModelID == "" {
		return "fake-model"
	}
	return f.ModelID
}

func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) CountTokens(text string) int { return CountTokens(text) }

func (f *FakeClient) Chat(ctx context.Context, msgs []Message) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, msgs)
	respond := f.Respond
	f.mu.Unlock()

	if respond == nil {
		return &Result{Text: "{}", Usage: f.PerCall}, nil
	}
	text, err := respond(n, msgs)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Usage: f.PerCall}, nil
}

// Calls reports how many Chat invocations reached this client.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Call returns the messages of the i-th invocation.
func (f *FakeClient) Call(i int) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

// ScriptJSON builds a Respond that replays the given payloads in order,
// repeating the last one once the script runs out.
func ScriptJSON(payloads ...string) func(int, []Message) (string, error) {
	return func(call int, _ []Message) (string, error) {
		if len(payloads) == 0 {
			return "{}", nil
		}
		if call >= len(payloads) {
			call = len(payloads) - 1
		}
		return payloads[call], nil
	}
}

// AlwaysErr builds a Respond that fails every call with err.
func AlwaysErr(err error) func(int, []Message) (string, error) {
	return func(int, []Message) (string, error) { return "", err }
}
