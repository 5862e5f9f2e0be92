package llmclient

import (
	"net/http"
	"os"
	"time"
)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// NewGroqClient creates a Groq client. Groq speaks the OpenAI chat
// completions wire format, including the retry-after and x-ratelimit-*
// response headers, so the OpenAI adapter carries it unchanged.
// If apiKey is empty, it falls back to the GROQ_API_KEY env var.
// See: https://console.groq.com/docs/api-reference
func NewGroqClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigError{Reason: "Groq API key is not set"}
	}
	if model == "" {
		return nil, &ConfigError{Reason: "no Groq model selected"}
	}
	return &OpenAIClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		name:    "groq",
		apiKey:  apiKey,
		model:   model,
		baseURL: groqEndpoint,
		maxOut:  1024,
	}, nil
}
