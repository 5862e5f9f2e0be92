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

// OpenAIClient calls an OpenAI-style Chat Completions endpoint and asks for
// JSON output. Groq exposes the same wire format, so NewGroqClient returns
// this adapter pointed at a different base URL.
type OpenAIClient struct {
	http    *http.Client
	name    string
	apiKey  string
	model   string
	baseURL string
	maxOut  int
}

// NewOpenAIClient creates an OpenAI client. If apiKey is empty, it falls back
// to the OPENAI_API_KEY env var.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigError{Reason: "OpenAI API key is not set"}
	}
	if model == "" {
		return nil, &ConfigError{Reason: "no OpenAI model selected"}
	}
	return &OpenAIClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		name:    "openai",
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1/chat/completions",
		maxOut:  1024,
	}, nil
}

func (c *OpenAIClient) Name() string  { return c.name }
func (c *OpenAIClient) Model() string { return c.model }
func (c *OpenAIClient) Close() error  { return nil }
func (c *OpenAIClient) CountTokens(text string) int {
	return CountTokens(text)
}

type chatCompletionsReq struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float32           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatCompletionsResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Chat sends the messages and returns the first choice plus reported usage.
func (c *OpenAIClient) Chat(ctx context.Context, msgs []Message) (*Result, error) {
	reqBody := chatCompletionsReq{
		Model:          c.model,
		Messages:       msgs,
		Temperature:    0,
		MaxTokens:      c.maxOut,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp)
	}
	var out chatCompletionsResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	return &Result{Text: out.Choices[0].Message.Content, Usage: out.Usage}, nil
}

func (c *OpenAIClient) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	const max = 2048
	if len(body) > max {
		body = body[:max]
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &RateLimitError{Provider: c.name, RetryAfter: ParseRateLimitHeaders(resp.Header).Hint()}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: c.name, Status: resp.StatusCode}
	case http.StatusBadRequest, http.StatusNotFound:
		err := fmt.Errorf("%s: unexpected status %s: %s", c.name, resp.Status, string(body))
		if strings.Contains(string(body), "context_length_exceeded") {
			return NewPermanentError(err)
		}
		return &ConfigError{Reason: fmt.Sprintf("%s rejected the request (%s): %s", c.name, resp.Status, string(body))}
	}
	return fmt.Errorf("%s: unexpected status %s: %s", c.name, resp.Status, string(body))
}
