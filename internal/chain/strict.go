package chain

import (
	"context"
	"strings"

	"commitscribe/internal/conventional"
	"commitscribe/internal/jsonutil"
	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
)

// StrictCheck runs the local header checks. No model call is involved;
// the returned problem list feeds the repair stage when non-empty.
func StrictCheck(message string) []string {
	return conventional.CheckHeader(message)
}

// forceWellFormed rebuilds a message from the draft's structured fields
// until the local checks pass: reassemble, truncate the header, then
// drop the scope. Last resort for when repair could not fix a message;
// the result always satisfies the header contract.
func forceWellFormed(d ClassifiedDraft) string {
	d.CommitMessage = ""
	msg := d.Message()
	if len(StrictCheck(msg)) == 0 {
		return msg
	}
	msg = conventional.TruncateHeader(msg)
	if len(StrictCheck(msg)) == 0 {
		return msg
	}
	d.Scope = ""
	return conventional.TruncateHeader(d.Message())
}

// Repairer asks the model for a minimal fix of an ill-formed message.
type Repairer struct {
	LLM llmclient.LLMClient
}

type repairInput struct {
	CommitMessage string   `json:"commit_message"`
	Problems      []string `json:"problems"`
	Rules         string   `json:"rules"`
}

// Run executes the repair stage. When the model fails to return a
// usable message, the prior one is kept rather than erroring.
func (r *Repairer) Run(ctx context.Context, message string, problems []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	payload, err := jsonutil.MarshalNoEscape(repairInput{CommitMessage: message, Problems: problems, Rules: rulesDoc()})
	if err != nil {
		return message, nil
	}
	res, err := r.LLM.Chat(llm.WithStage(ctx, "repair"), llmclient.System(repairPrompt, string(payload)))
	if err != nil {
		return "", err
	}

	var out struct {
		CommitMessage string `json:"commit_message"`
	}
	if err := jsonutil.DecodeLoose(res.Text, &out); err != nil {
		return message, nil
	}
	if fixed := strings.TrimSpace(out.CommitMessage); fixed != "" {
		return fixed, nil
	}
	return message, nil
}
