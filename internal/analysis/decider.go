package analysis

import "commitscribe/internal/git"

// DefaultThreshold is how many commits may land before a stored
// analysis counts as stale.
const DefaultThreshold = 10

// ShouldUpdate reports whether the stored analysis needs a refresh
// against the live history (newest first). A missing record, a record
// without an anchor, or an anchor no longer present in history always
// needs one; otherwise the analysis is stale once at least threshold
// commits sit above the anchor. Index 0 means the anchor is still the
// newest commit.
func ShouldUpdate(a *Analysis, history []git.Commit, threshold int) bool {
	if threshold < 1 {
		threshold = 1
	}
	if a == nil {
		return true
	}
	if a.LastAnalyzedHash == "" {
		return true
	}
	idx := anchorIndex(history, a.LastAnalyzedHash)
	if idx < 0 {
		// Rebase or history rewrite removed the anchor.
		return true
	}
	return idx >= threshold
}

func anchorIndex(history []git.Commit, hash string) int {
	for i, c := range history {
		if c.Hash == hash {
			return i
		}
	}
	return -1
}
