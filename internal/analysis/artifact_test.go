package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	a := sampleAnalysis()
	a.LastAnalyzedHash = "abc123456789def0"

	md := renderMarkdown(a)

	assert.True(t, strings.HasPrefix(md, "# Repository Analysis\n"))
	assert.Contains(t, md, "Generated 2026-08-22T10:00:00Z.")
	assert.Contains(t, md, "## Summary\n\nA demo repository.\n")
	assert.Contains(t, md, "- Single binary under cmd/")
	assert.Contains(t, md, "- Project type: Go module")
	assert.Contains(t, md, "- Technologies: Go")
	assert.Contains(t, md, "- Key directories: internal")
	assert.Contains(t, md, "Analyzed as of commit abc123456789.")
}

func TestRenderMarkdownMinimalRecord(t *testing.T) {
	a := &Analysis{
		Summary:     "Bare repository.",
		ProjectType: "unknown",
		Timestamp:   time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC),
	}

	md := renderMarkdown(a)

	assert.NotContains(t, md, "## Insights")
	assert.NotContains(t, md, "Analyzed as of commit")
	assert.NotContains(t, md, "Technologies:")
	assert.Contains(t, md, "Bare repository.")
}

func TestWriteArtifactKeepsExistingIgnoreFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, writeArtifact(root, sampleAnalysis()))

	ignorePath := filepath.Join(root, artifactDir, ".gitignore")
	data, err := os.ReadFile(ignorePath)
	require.NoError(t, err)
	assert.Equal(t, "*\n", string(data))

	// A hand-edited ignore file is left alone on rewrite.
	require.NoError(t, os.WriteFile(ignorePath, []byte("analysis.md\n"), 0o644))
	require.NoError(t, writeArtifact(root, sampleAnalysis()))
	data, err = os.ReadFile(ignorePath)
	require.NoError(t, err)
	assert.Equal(t, "analysis.md\n", string(data))
}

func TestRemoveArtifactMissingFile(t *testing.T) {
	assert.NoError(t, removeArtifact(t.TempDir()))
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", shortHash("abc"))
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
}
