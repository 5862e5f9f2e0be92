package chain

import (
	"context"
	"strings"

	"commitscribe/internal/conventional"
	"commitscribe/internal/jsonutil"
	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
)

// SingleShot is the legacy strategy: one model call over the raw diffs
// returns the finished message. It rides the same wrapped transport and
// the same local post-processing as the chain, so retry behavior and
// the header contract are identical; there is just no fan-out, no
// validation call and no repair call.
type SingleShot struct {
	LLM llmclient.LLMClient
}

type singleShotInput struct {
	Diffs    []FileDiff `json:"diffs"`
	Template string     `json:"template,omitempty"`
	Language string     `json:"language"`
	Now      string     `json:"current_time"`
}

func (s *SingleShot) Generate(ctx context.Context, req Request) (*Outputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Diffs) == 0 {
		return nil, ErrNoChanges
	}

	in := singleShotInput{
		Diffs:    req.Diffs,
		Template: req.Template,
		Language: languageOf(req),
		Now:      timestampOf(req),
	}
	payload, err := jsonutil.MarshalNoEscape(in)
	if err != nil {
		return nil, err
	}
	res, err := s.LLM.Chat(llm.WithStage(ctx, "singleshot"), llmclient.System(singleShotPrompt, string(payload)))
	if err != nil {
		return nil, err
	}

	var draft ClassifiedDraft
	if err := jsonutil.DecodeLoose(res.Text, &draft); err != nil {
		draft = fallbackDraft(nil)
	}

	message := conventional.SanitizeBody(draft.Message())
	if len(StrictCheck(message)) > 0 {
		// No repair stage here; rebuild from the structured fields.
		message = conventional.SanitizeBody(forceWellFormed(draft))
	}

	return &Outputs{
		CommitMessage: message,
		Raw:           RawOutputs{Draft: draft, ClassificationNotes: draft.Notes},
	}, nil
}
