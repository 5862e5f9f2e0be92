// Package chain generates commit messages from file diffs. The main
// strategy is a multi-stage pipeline: per-file summaries fan out
// through a bounded worker pool, one drafting call classifies the
// change and writes the message, a validation call reviews it, and a
// local strict check with an optional repair call enforces the header
// grammar before the body is sanitized. A legacy single-call strategy
// shares the same interface and post-processing.
package chain

import (
	"context"
	"time"
)

// ChangeKind classifies one changed file in a diff set.
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeModified  ChangeKind = "modified"
	ChangeDeleted   ChangeKind = "deleted"
	ChangeRenamed   ChangeKind = "renamed"
	ChangeUntracked ChangeKind = "untracked"
	ChangeIgnored   ChangeKind = "ignored"
)

// Hunk is one change block of a unified diff.
type Hunk struct {
	Header  string   `json:"header"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// FileDiff is one changed file, the immutable input to generation.
type FileDiff struct {
	Path  string     `json:"path"`
	Kind  ChangeKind `json:"kind"`
	Patch string     `json:"patch"`
	Hunks []Hunk     `json:"hunks,omitempty"`
}

// FileSummary is what stage 1 produces for each FileDiff. Summary is
// never empty: unusable model output degrades to a synthetic summary.
type FileSummary struct {
	File     string `json:"file"`
	Status   string `json:"status"`
	Summary  string `json:"summary"`
	Breaking bool   `json:"breaking"`
}

// TemplatePolicy is the structured distillation of a free-text user
// commit template. Derived fresh per generation, never persisted.
type TemplatePolicy struct {
	Header  string   `json:"header"`
	Body    string   `json:"body"`
	Footers []string `json:"footers"`
	Lexicon []string `json:"lexicon"`
}

// ClassifiedDraft is the structured output of the drafting stage.
type ClassifiedDraft struct {
	Type          string   `json:"type"`
	Scope         string   `json:"scope"`
	Breaking      bool     `json:"breaking"`
	Description   string   `json:"description"`
	Body          string   `json:"body"`
	Footers       []string `json:"footers"`
	CommitMessage string   `json:"commit_message"`
	Notes         string   `json:"notes"`
}

// ValidatedMessage is the validation stage's verdict on a draft.
type ValidatedMessage struct {
	Status        string   `json:"status"`
	CommitMessage string   `json:"commit_message"`
	Violations    []string `json:"violations"`
	Notes         string   `json:"notes"`
}

// RawOutputs keeps intermediate stage output for diagnostics and
// logging. Nothing downstream depends on it.
type RawOutputs struct {
	Draft               ClassifiedDraft
	ClassificationNotes string
	ValidationNotes     string
	TemplatePolicy      *TemplatePolicy
}

// Outputs is the full result of one generation.
type Outputs struct {
	CommitMessage string
	FileSummaries []FileSummary
	Raw           RawOutputs
}

// Request describes one commit message generation.
type Request struct {
	// RepoPath identifies the repository, for guard bookkeeping only.
	RepoPath string
	// Diffs is the change set to describe. Input order carries no meaning.
	Diffs []FileDiff
	// Template is the user's free-text commit template, optional.
	Template string
	// Language of the generated message. Empty means English.
	Language string
	// FileTree optionally lists workspace paths for drafting context.
	FileTree []string
	// Now anchors "current time" in prompts. Zero means time.Now.
	Now time.Time
}

// Generator produces one commit message from a set of file diffs. Both
// the multi-stage chain and the legacy single-call path implement it.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Outputs, error)
}
