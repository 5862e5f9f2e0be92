package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"commitscribe/internal/chain"
)

// maxUntrackedBytes caps how much of an untracked file is turned into a
// synthetic patch. Larger files are cut with a marker line.
const maxUntrackedBytes = 256 << 10

// StagedDiffs collects the staged changes plus untracked files as the
// pipeline's input set. Order follows git's output; callers must not
// rely on it.
func (r *Repo) StagedDiffs(ctx context.Context) ([]chain.FileDiff, error) {
	nameStatus, err := r.runner.run(ctx, "diff", "--cached", "--name-status")
	if err != nil {
		return nil, err
	}
	full, err := r.runner.runRaw(ctx, "diff", "--cached")
	if err != nil {
		return nil, err
	}
	patches := splitByFile(full)

	var diffs []chain.FileDiff
	for _, line := range lines(nameStatus) {
		path, kind, ok := parseNameStatus(line)
		if !ok {
			continue
		}
		patch := patches[path]
		diffs = append(diffs, chain.FileDiff{
			Path:  path,
			Kind:  kind,
			Patch: patch,
			Hunks: ParseHunks(patch),
		})
	}

	untracked, err := r.Untracked(ctx)
	if err != nil {
		return nil, err
	}
	diffs = append(diffs, untracked...)
	return diffs, nil
}

// Untracked lists files git does not know about yet, each with a
// synthetic all-added patch so the pipeline can describe them.
func (r *Repo) Untracked(ctx context.Context) ([]chain.FileDiff, error) {
	out, err := r.runner.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	var diffs []chain.FileDiff
	for _, path := range lines(out) {
		content, err := os.ReadFile(filepath.Join(r.root, path))
		if err != nil {
			// Deleted or unreadable between listing and read. List it
			// without content.
			diffs = append(diffs, chain.FileDiff{Path: path, Kind: chain.ChangeUntracked})
			continue
		}
		patch := untrackedPatch(content)
		diffs = append(diffs, chain.FileDiff{
			Path:  path,
			Kind:  chain.ChangeUntracked,
			Patch: patch,
			Hunks: ParseHunks(patch),
		})
	}
	return diffs, nil
}

// parseNameStatus reads one `--name-status` line. Renames and copies
// carry two paths; the new one identifies the diff.
func parseNameStatus(line string) (path string, kind chain.ChangeKind, ok bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return "", "", false
	}
	kind = mapStatus(fields[0])
	path = fields[len(fields)-1]
	return path, kind, path != ""
}

// mapStatus converts a git status letter (possibly with a similarity
// score, as in R100) into a change kind.
func mapStatus(code string) chain.ChangeKind {
	if code == "" {
		return chain.ChangeModified
	}
	switch code[0] {
	case 'A', 'C':
		return chain.ChangeAdded
	case 'D':
		return chain.ChangeDeleted
	case 'R':
		return chain.ChangeRenamed
	default:
		return chain.ChangeModified
	}
}

// splitByFile cuts one `git diff` output into per-file patches keyed by
// the post-image path.
func splitByFile(diff string) map[string]string {
	patches := make(map[string]string)
	if strings.TrimSpace(diff) == "" {
		return patches
	}

	var path string
	var buf []string
	flush := func() {
		if path != "" {
			patches[path] = strings.Join(buf, "\n")
		}
		buf = nil
	}

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			path = postImagePath(line)
		}
		buf = append(buf, line)
	}
	flush()
	return patches
}

// postImagePath extracts the b/ path from a `diff --git a/x b/y` line.
func postImagePath(line string) string {
	if i := strings.LastIndex(line, " b/"); i >= 0 {
		return line[i+len(" b/"):]
	}
	return ""
}

// ParseHunks splits a unified diff for one file into hunks. Context
// lines are dropped; only the header and the changed lines are kept,
// which is what the summarizer works from.
func ParseHunks(patch string) []chain.Hunk {
	if patch == "" {
		return nil
	}

	var hunks []chain.Hunk
	var cur *chain.Hunk
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			if cur != nil {
				hunks = append(hunks, *cur)
			}
			cur = &chain.Hunk{Header: line}
		case cur == nil:
			// File header lines before the first hunk.
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			cur.Added = append(cur.Added, line[1:])
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			cur.Removed = append(cur.Removed, line[1:])
		}
	}
	if cur != nil {
		hunks = append(hunks, *cur)
	}
	return hunks
}

// untrackedPatch renders file content as an all-added unified diff
// body. Binary content gets a placeholder instead of raw bytes.
func untrackedPatch(content []byte) string {
	if isBinary(content) {
		return "Binary file (untracked)"
	}

	truncated := false
	if len(content) > maxUntrackedBytes {
		content = content[:maxUntrackedBytes]
		truncated = true
	}

	text := strings.TrimRight(string(content), "\n")
	if text == "" {
		return "@@ -0,0 +0,0 @@ (empty file)"
	}
	added := strings.Split(text, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(added))
	for _, line := range added {
		b.WriteString("+")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if truncated {
		b.WriteString("+... (truncated)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// isBinary applies git's own heuristic: a NUL byte in the head of the
// file, or content that is not valid UTF-8.
func isBinary(content []byte) bool {
	head := content
	if len(head) > 8000 {
		head = head[:8000]
	}
	for _, b := range head {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(content)
}
