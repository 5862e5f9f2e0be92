// Package cost turns recorded token usage into running totals and an
// on-disk day-keyed ledger, priced from a static per-model table.
package cost

import (
	"commitscribe/internal/llmclient"
)

// Price is USD per one million tokens, split by direction. Models not
// in the table cost zero; their tokens are still tracked.
type Price struct {
	Prompt     float64
	Completion float64
}

// prices holds published list prices for the models the registry
// defaults to. Override models fall back to zero cost rather than a
// guess.
var prices = map[string]Price{
	"openai/gpt-4o-mini":                {Prompt: 0.15, Completion: 0.60},
	"openai/gpt-4o":                     {Prompt: 2.50, Completion: 10.00},
	"groq/llama-3.3-70b-versatile":      {Prompt: 0.59, Completion: 0.79},
	"groq/llama-3.1-8b-instant":         {Prompt: 0.05, Completion: 0.08},
	"anthropic/claude-3-5-haiku-latest": {Prompt: 0.80, Completion: 4.00},
	"gemini/gemini-2.0-flash":           {Prompt: 0.10, Completion: 0.40},
}

// PriceFor looks up the price for a provider's model.
func PriceFor(provider, model string) (Price, bool) {
	p, ok := prices[provider+"/"+model]
	return p, ok
}

// Cost prices one call's usage in USD.
func (p Price) Cost(u llmclient.Usage) float64 {
	return float64(u.PromptTokens)/1e6*p.Prompt + float64(u.CompletionTokens)/1e6*p.Completion
}
