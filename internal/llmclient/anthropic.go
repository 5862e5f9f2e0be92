package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// AnthropicClient calls the Anthropic Messages API.
// See: https://docs.anthropic.com/en/api/messages
type AnthropicClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
	maxOut  int
}

// NewAnthropicClient creates an Anthropic client. If apiKey is empty, it
// falls back to the ANTHROPIC_API_KEY env var.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigError{Reason: "Anthropic API key is not set"}
	}
	if model == "" {
		return nil, &ConfigError{Reason: "no Anthropic model selected"}
	}
	return &AnthropicClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.anthropic.com/v1/messages",
		maxOut:  1024,
	}, nil
}

func (c *AnthropicClient) Name() string  { return "anthropic" }
func (c *AnthropicClient) Model() string { return c.model }
func (c *AnthropicClient) Close() error  { return nil }
func (c *AnthropicClient) CountTokens(text string) int {
	return CountTokens(text)
}

type anthropicReq struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type anthropicResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Chat sends the messages, lifting any system-role entries into the
// top-level system field the Messages API expects.
func (c *AnthropicClient) Chat(ctx context.Context, msgs []Message) (*Result, error) {
	reqBody := anthropicReq{
		Model:     c.model,
		MaxTokens: c.maxOut,
	}
	var system []string
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		reqBody.Messages = append(reqBody.Messages, m)
	}
	reqBody.System = strings.Join(system, "\n\n")
	if len(reqBody.Messages) == 0 {
		// the API rejects an empty messages array
		reqBody.Messages = []Message{{Role: RoleUser, Content: "Respond per the system instructions."}}
	}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp)
	}
	var out anthropicResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}
	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, ErrEmptyResponse
	}
	usage := Usage{
		PromptTokens:     out.Usage.InputTokens,
		CompletionTokens: out.Usage.OutputTokens,
		TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
	}
	return &Result{Text: text.String(), Usage: usage}, nil
}

func (c *AnthropicClient) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	const max = 2048
	if len(body) > max {
		body = body[:max]
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &RateLimitError{Provider: "anthropic", RetryAfter: parseRetryAfter(resp.Header.Get("retry-after"))}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: "anthropic", Status: resp.StatusCode}
	case http.StatusBadRequest, http.StatusNotFound:
		err := fmt.Errorf("anthropic: unexpected status %s: %s", resp.Status, string(body))
		if strings.Contains(string(body), "prompt is too long") {
			return NewPermanentError(err)
		}
		return &ConfigError{Reason: fmt.Sprintf("anthropic rejected the request (%s): %s", resp.Status, string(body))}
	}
	return fmt.Errorf("anthropic: unexpected status %s: %s", resp.Status, string(body))
}
