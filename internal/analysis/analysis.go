// Package analysis maintains a per-repository project analysis: a
// model-written summary of what the repository is, refreshed when
// enough commits have landed since the last run. The stored record
// anchors itself to the commit hash it was computed at; the decider
// compares that anchor against live history to tell fresh from stale.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"time"

	"commitscribe/internal/git"
	"commitscribe/internal/scan"
)

// Analysis is the persisted per-repository record. It is replaced as a
// whole on every successful run, never patched field by field.
type Analysis struct {
	RepositoryPath   string    `json:"repositoryPath"`
	Timestamp        time.Time `json:"timestamp"`
	LastAnalyzedHash string    `json:"lastAnalyzedStateHash"`
	Summary          string    `json:"summary"`
	Insights         []string  `json:"insights,omitempty"`
	ProjectType      string    `json:"projectType"`
	Technologies     []string  `json:"technologies,omitempty"`
	KeyDirectories   []string  `json:"keyDirectories,omitempty"`
	ImportantFiles   []string  `json:"importantFiles,omitempty"`
	ReadmeContent    string    `json:"readmeContent,omitempty"`
	ConfigFiles      []string  `json:"configFiles,omitempty"`
}

// Key derives the stable store key for a repository path.
func Key(repoPath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(repoPath)))
	return hex.EncodeToString(sum[:])
}

// Store persists Analysis records by key. Implementations must write
// whole records atomically so a concurrent reader never sees a torn
// one.
type Store interface {
	// Get returns the stored analysis for key, or nil when absent.
	Get(key string) (*Analysis, error)
	Put(key string, a *Analysis) error
	Delete(key string) error
}

// History lists commits newest first, at most limit entries. A
// repository with no commits yields an empty list, not an error.
type History interface {
	Recent(ctx context.Context, limit int) ([]git.Commit, error)
}

// ScanFunc produces the repository structure fed to the model.
type ScanFunc func(ctx context.Context, root string) (*scan.Structure, error)
