package chain

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"commitscribe/internal/conventional"
	"commitscribe/internal/llmclient"
)

// ErrNoChanges means the request carried no file diffs to describe.
var ErrNoChanges = errors.New("no file changes to describe")

// Options tunes a generator. The zero value is usable.
type Options struct {
	// Parallel bounds the stage-1 fan-out. Zero derives it from the
	// number of diffs.
	Parallel int
	// Cache memoizes per-file summaries across generations, optional.
	Cache *SummaryCache
	// Logger receives stage progress lines, nil for log.Default().
	Logger *log.Logger
	// Progress, when set, gets one call per summarized file so the
	// caller can render a progress bar.
	Progress func(done, total int)
}

// Chain is the multi-stage strategy: summarize, draft, validate,
// strict-check with optional repair, sanitize.
type Chain struct {
	summarize *Summarizer
	template  *TemplateExtractor
	draft     *Drafter
	validate  *Validator
	repair    *Repairer
	log       *log.Logger
}

// NewChain builds the multi-stage generator on top of cli. The client
// is used as given; wrap it with retry and rate limiting first.
func NewChain(cli llmclient.LLMClient, opts Options) *Chain {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Chain{
		summarize: &Summarizer{LLM: cli, Parallel: opts.Parallel, Cache: opts.Cache, Progress: opts.Progress},
		template:  &TemplateExtractor{LLM: cli},
		draft:     &Drafter{LLM: cli},
		validate:  &Validator{LLM: cli},
		repair:    &Repairer{LLM: cli},
		log:       logger,
	}
}

// NewGenerator selects the generation strategy: the multi-stage chain,
// or the legacy single-call path as a degenerate one-stage variant.
func NewGenerator(cli llmclient.LLMClient, useChain bool, opts Options) Generator {
	if useChain {
		return NewChain(cli, opts)
	}
	return &SingleShot{LLM: cli}
}

// Generate runs the full pipeline for one request. Malformed model
// output never fails a run; errors come only from the transport
// (cancellation, auth, exhausted retries) or an empty change set.
func (c *Chain) Generate(ctx context.Context, req Request) (*Outputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Diffs) == 0 {
		return nil, ErrNoChanges
	}

	summaries, err := c.summarize.Summarize(ctx, req.Diffs)
	if err != nil {
		return nil, err
	}
	c.log.Printf("chain: summarized %d files", len(summaries))

	policy, err := c.template.Run(ctx, req.Template)
	if err != nil {
		return nil, err
	}

	draft, err := c.draft.Run(ctx, draftInput{
		FileSummaries: summaries,
		FileTree:      req.FileTree,
		Template:      req.Template,
		Policy:        policy,
		Language:      languageOf(req),
		Now:           timestampOf(req),
	})
	if err != nil {
		return nil, err
	}
	message := draft.Message()

	validated, err := c.validate.Run(ctx, message)
	if err != nil {
		return nil, err
	}
	if m := strings.TrimSpace(validated.CommitMessage); m != "" {
		message = m
	}

	if problems := StrictCheck(message); len(problems) > 0 {
		c.log.Printf("chain: strict check found %d problems, repairing", len(problems))
		message, err = c.repair.Run(ctx, message, problems)
		if err != nil {
			return nil, err
		}
		if len(StrictCheck(message)) > 0 {
			message = forceWellFormed(draft)
		}
	}

	message = conventional.SanitizeBody(message)

	return &Outputs{
		CommitMessage: message,
		FileSummaries: summaries,
		Raw: RawOutputs{
			Draft:               draft,
			ClassificationNotes: draft.Notes,
			ValidationNotes:     validated.Notes,
			TemplatePolicy:      policy,
		},
	}, nil
}

func languageOf(req Request) string {
	if l := strings.TrimSpace(req.Language); l != "" {
		return l
	}
	return "English"
}

func timestampOf(req Request) string {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	return now.Format(time.RFC3339)
}
