package chain

import (
	"fmt"
	"strings"

	"commitscribe/internal/conventional"
)

// Every prompt follows the same house style: role line, task, a STRICT
// JSON shape, then constraints. The stage input travels as a JSON
// document in the user message.

const summarizePrompt = `You are an expert release engineer.
Summarize ONE file's diff so the change can be described in a commit message.

Return STRICT JSON ONLY:
{
  "file": "string",
  "status": "added|modified|deleted|renamed|untracked|ignored",
  "summary": "string, at most 18 words, imperative mood",
  "breaking": false
}

Constraints:
- Describe WHAT changed, never line counts or hunk positions.
- "breaking" is true only for incompatible API or behavior changes.
- No narrative text outside the JSON.`

const templatePrompt = `You are an expert release engineer.
The user wrote a free-text commit message template. Distill it into a formatting policy.

Return STRICT JSON ONLY:
{
  "header": "string, how the header line should be shaped",
  "body": "string, how the body should be shaped",
  "footers": ["string, footer conventions to follow"],
  "lexicon": ["string, terms the user prefers"]
}

Constraints:
- Extract only what the template actually implies; leave fields empty otherwise.
- No narrative text outside the JSON.`

const draftPrompt = `You are an expert release engineer writing a Conventional Commits message.
Classify the change set from the file summaries and draft the full message.

Return STRICT JSON ONLY:
{
  "type": "feat|fix|docs|style|refactor|perf|test|build|ci|chore",
  "scope": "string, empty when none fits",
  "breaking": false,
  "description": "string, imperative, lower case, no trailing period",
  "body": "string, optional bullet lines each starting with \"- \"",
  "footers": ["Token: value"],
  "commit_message": "string, the fully assembled message",
  "notes": "string"
}

Constraints:
- The header is "type(scope)!: description" and must stay within 72 characters.
- Never put commit type tokens (feat:, fix:, ...) or "!" markers inside body bullet lines.
- One bullet per logical change, most important first.
- When "breaking" is true, mark it with "!" in the header or a "BREAKING CHANGE:" footer.
- Follow the template policy when one is provided.
- Write the message in the requested language.
- No narrative text outside the JSON.`

const validatePrompt = `You are a Conventional Commits reviewer.
Check the commit message against the rules. Fix it when it violates them, otherwise return it unchanged.

Return STRICT JSON ONLY, one of:
{"status":"valid","commit_message":"string","violations":[]}
{"status":"fixed","commit_message":"string","violations":["string"],"notes":"string"}

Constraints:
- Keep the author's wording wherever the rules allow it.
- "violations" lists the rules the original message broke, empty when none.
- No narrative text outside the JSON.`

const repairPrompt = `You are a Conventional Commits reviewer.
The commit message below breaks the listed rules. Apply the smallest fix that resolves every problem.

Return STRICT JSON ONLY:
{"commit_message":"string"}

Constraints:
- Change as little wording as possible.
- No narrative text outside the JSON.`

const singleShotPrompt = `You are an expert release engineer writing a Conventional Commits message.
Read the raw diffs and write the commit message in one step.

Return STRICT JSON ONLY:
{
  "type": "feat|fix|docs|style|refactor|perf|test|build|ci|chore",
  "scope": "string, empty when none fits",
  "breaking": false,
  "description": "string, imperative, lower case, no trailing period",
  "body": "string, optional bullet lines each starting with \"- \"",
  "footers": ["Token: value"],
  "commit_message": "string, the fully assembled message",
  "notes": "string"
}

Constraints:
- The header is "type(scope)!: description" and must stay within 72 characters.
- Never put commit type tokens or "!" markers inside body bullet lines.
- Write the message in the requested language.
- No narrative text outside the JSON.`

// rulesDoc is the rules text shown to the validation and repair stages.
// It is built from the same grammar package the local checks use, so
// the model and the checker never disagree on the rules.
func rulesDoc() string {
	return fmt.Sprintf(`Commit message rules:
- The header is "type(scope)!: description" with a single space after the colon.
- type is one of: %s.
- The header is at most %d characters long.
- One blank line between header and body, and between body and footers.
- Body bullet lines never start with commit type tokens.
- A breaking change carries "!" in the header or a "%s:" footer.`,
		strings.Join(conventional.Types, ", "), conventional.HeaderMaxLen, conventional.BreakingToken)
}
