package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself; cross-cutting concerns
// (rate limiting, retries, logging, usage) are applied via middleware.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini client. If apiKey is empty, it falls back
// to the GEMINI_API_KEY env var.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigError{Reason: "Gemini API key is not set"}
	}
	if model == "" {
		return nil, &ConfigError{Reason: "no Gemini model selected"}
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string  { return "gemini" }
func (g *GeminiClient) Model() string { return g.model }
func (g *GeminiClient) Close() error  { return nil }
func (g *GeminiClient) CountTokens(text string) int {
	return CountTokens(text)
}

// Chat maps system messages onto the system instruction and sends the rest
// as user content, asking for application/json output.
func (g *GeminiClient) Chat(ctx context.Context, msgs []Message) (*Result, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	var contents []*genai.Content
	for _, m := range msgs {
		part := &genai.Part{Text: m.Content}
		if m.Role == RoleSystem {
			if cfg.SystemInstruction == nil {
				cfg.SystemInstruction = &genai.Content{}
			}
			cfg.SystemInstruction.Parts = append(cfg.SystemInstruction.Parts, part)
			continue
		}
		contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{part}})
	}
	if len(contents) == 0 {
		contents = []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: "Respond per the system instructions."}}}}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, g.mapError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return nil, ErrEmptyResponse
	}
	var usage Usage
	if um := resp.UsageMetadata; um != nil {
		usage = Usage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: int(um.CandidatesTokenCount),
			TotalTokens:      int(um.TotalTokenCount),
		}
	}
	return &Result{Text: text.String(), Usage: usage}, nil
}

func (g *GeminiClient) mapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini: %w", err)
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return &RateLimitError{Provider: "gemini", RetryAfter: retryDelayFromDetails(apiErr.Details)}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: "gemini", Status: apiErr.Code}
	case http.StatusBadRequest, http.StatusNotFound:
		return &ConfigError{Reason: fmt.Sprintf("gemini rejected the request (%d): %s", apiErr.Code, apiErr.Message)}
	}
	return fmt.Errorf("gemini: %w", err)
}

// retryDelayFromDetails digs the RetryInfo retryDelay (e.g. "39s") out of a
// google.rpc error detail list.
func retryDelayFromDetails(details []map[string]any) time.Duration {
	for _, d := range details {
		t, _ := d["@type"].(string)
		if !strings.Contains(t, "RetryInfo") {
			continue
		}
		if s, ok := d["retryDelay"].(string); ok {
			if dur, err := time.ParseDuration(s); err == nil && dur > 0 {
				return dur
			}
		}
	}
	return 0
}
