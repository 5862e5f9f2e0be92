package chain

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SummaryCache memoizes stage-1 summaries by diff content, so
// regenerating after an unrelated edit skips model calls for files
// whose diffs did not change.
type SummaryCache struct {
	lru *lru.Cache[string, FileSummary]
}

// NewSummaryCache creates a cache holding up to size summaries.
// size <= 0 selects a default.
func NewSummaryCache(size int) (*SummaryCache, error) {
	if size <= 0 {
		size = 512
	}
	c, err := lru.New[string, FileSummary](size)
	if err != nil {
		return nil, err
	}
	return &SummaryCache{lru: c}, nil
}

func (c *SummaryCache) Get(d FileDiff) (FileSummary, bool) {
	return c.lru.Get(summaryKey(d))
}

func (c *SummaryCache) Put(d FileDiff, sum FileSummary) {
	c.lru.Add(summaryKey(d), sum)
}

// Len reports how many summaries are currently cached.
func (c *SummaryCache) Len() int { return c.lru.Len() }

// summaryKey hashes the parts of a diff that influence its summary.
func summaryKey(d FileDiff) string {
	h := sha256.New()
	h.Write([]byte(d.Path))
	h.Write([]byte{0})
	h.Write([]byte(d.Kind))
	h.Write([]byte{0})
	h.Write([]byte(d.Patch))
	return hex.EncodeToString(h.Sum(nil))
}
