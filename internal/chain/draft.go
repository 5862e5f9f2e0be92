package chain

import (
	"context"
	"fmt"
	"strings"

	"commitscribe/internal/conventional"
	"commitscribe/internal/jsonutil"
	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
)

// Drafter turns the collected file summaries into a classified draft
// with one model call.
type Drafter struct {
	LLM llmclient.LLMClient
}

type draftInput struct {
	FileSummaries []FileSummary   `json:"file_summaries"`
	FileTree      []string        `json:"file_tree,omitempty"`
	Template      string          `json:"template,omitempty"`
	Policy        *TemplatePolicy `json:"template_policy,omitempty"`
	Language      string          `json:"language"`
	Now           string          `json:"current_time"`
}

// Run executes the drafting stage. Unusable model output degrades to a
// draft synthesized from the summaries; only transport errors propagate.
func (d *Drafter) Run(ctx context.Context, in draftInput) (ClassifiedDraft, error) {
	if err := ctx.Err(); err != nil {
		return ClassifiedDraft{}, err
	}

	payload, err := jsonutil.MarshalNoEscape(in)
	if err != nil {
		return fallbackDraft(in.FileSummaries), nil
	}
	res, err := d.LLM.Chat(llm.WithStage(ctx, "draft"), llmclient.System(draftPrompt, string(payload)))
	if err != nil {
		return ClassifiedDraft{}, err
	}

	var draft ClassifiedDraft
	if err := jsonutil.DecodeLoose(res.Text, &draft); err != nil {
		return fallbackDraft(in.FileSummaries), nil
	}
	if strings.TrimSpace(draft.CommitMessage) == "" && strings.TrimSpace(draft.Description) == "" {
		return fallbackDraft(in.FileSummaries), nil
	}
	return draft, nil
}

// Message returns the draft's commit message, assembling one from the
// structured fields when the model did not hand back a full message.
// A breaking draft whose header lacks the "!" marker gains a breaking
// footer so the information cannot be lost.
func (d ClassifiedDraft) Message() string {
	msg := strings.TrimSpace(d.CommitMessage)
	if msg == "" {
		typ := d.Type
		if !conventional.KnownType(typ) {
			typ = "chore"
		}
		desc := strings.TrimSpace(d.Description)
		if desc == "" {
			desc = "update project files"
		}
		msg = conventional.Assemble(typ, d.Scope, d.Breaking, desc, d.Body, d.Footers)
	}
	if d.Breaking {
		msg = conventional.EnsureBreakingFooter(msg, d.Description)
	}
	return msg
}

// fallbackDraft synthesizes a draft when the model's answer was
// unusable, so generation still ends with a well-formed message.
func fallbackDraft(sums []FileSummary) ClassifiedDraft {
	desc := "update project files"
	switch {
	case len(sums) == 1:
		desc = sums[0].Summary
	case len(sums) > 1:
		desc = fmt.Sprintf("update %d files", len(sums))
	}
	breaking := false
	for _, s := range sums {
		if s.Breaking {
			breaking = true
			break
		}
	}
	return ClassifiedDraft{
		Type:        "chore",
		Breaking:    breaking,
		Description: desc,
		Notes:       "draft synthesized locally from file summaries",
	}
}
