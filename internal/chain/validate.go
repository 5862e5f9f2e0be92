package chain

import (
	"context"
	"strings"

	"commitscribe/internal/jsonutil"
	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
)

// Validator reviews a drafted message against the rules document with
// one model call, accepting either a "valid" echo or a fixed rewrite.
type Validator struct {
	LLM llmclient.LLMClient
}

type validateInput struct {
	CommitMessage string `json:"commit_message"`
	Rules         string `json:"rules"`
}

// Run executes the validation stage. Whatever message the model hands
// back wins; an unusable answer keeps the draft unchanged and marks the
// verdict as unverified.
func (v *Validator) Run(ctx context.Context, message string) (ValidatedMessage, error) {
	if err := ctx.Err(); err != nil {
		return ValidatedMessage{}, err
	}

	payload, err := jsonutil.MarshalNoEscape(validateInput{CommitMessage: message, Rules: rulesDoc()})
	if err != nil {
		return unverified(message), nil
	}
	res, err := v.LLM.Chat(llm.WithStage(ctx, "validate"), llmclient.System(validatePrompt, string(payload)))
	if err != nil {
		return ValidatedMessage{}, err
	}

	var out ValidatedMessage
	if err := jsonutil.DecodeLoose(res.Text, &out); err != nil {
		return unverified(message), nil
	}
	if strings.TrimSpace(out.CommitMessage) == "" {
		out.CommitMessage = message
	}
	if out.Status == "" {
		out.Status = "valid"
	}
	return out, nil
}

func unverified(message string) ValidatedMessage {
	return ValidatedMessage{
		Status:        "unverified",
		CommitMessage: message,
		Notes:         "validator output was unusable, draft kept as-is",
	}
}
