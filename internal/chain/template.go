package chain

import (
	"context"
	"strings"

	"commitscribe/internal/jsonutil"
	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
)

// TemplateExtractor distills a free-text commit template into a
// TemplatePolicy before drafting.
type TemplateExtractor struct {
	LLM llmclient.LLMClient
}

// Run returns the extracted policy, or nil when no template was given
// or the model's answer is unusable. Drafting is never blocked on a
// bad policy; only transport errors propagate.
func (t *TemplateExtractor) Run(ctx context.Context, template string) (*TemplatePolicy, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := t.LLM.Chat(llm.WithStage(ctx, "template"), llmclient.System(templatePrompt, template))
	if err != nil {
		return nil, err
	}

	var policy TemplatePolicy
	if err := jsonutil.DecodeLoose(res.Text, &policy); err != nil {
		return nil, nil
	}
	if policy.Header == "" && policy.Body == "" && len(policy.Footers) == 0 && len(policy.Lexicon) == 0 {
		return nil, nil
	}
	return &policy, nil
}
