package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"commitscribe/internal/fsutil"
)

// artifactDir is kept inside the repository so the analysis travels
// with local clones, but it ignores itself so it never shows up as an
// uncommitted change.
const artifactDir = ".commitscribe"

// ArtifactPath is where the derived markdown lands for a repository.
func ArtifactPath(root string) string {
	return filepath.Join(root, artifactDir, "analysis.md")
}

// writeArtifact renders the analysis to a regenerable markdown file.
// The stored JSON record stays authoritative; this file is for humans.
func writeArtifact(root string, a *Analysis) error {
	if err := ensureSelfIgnore(filepath.Join(root, artifactDir)); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(ArtifactPath(root), []byte(renderMarkdown(a)), 0o644)
}

func removeArtifact(root string) error {
	if err := os.Remove(ArtifactPath(root)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ensureSelfIgnore drops a catch-all .gitignore into dir so the
// artifact directory stays invisible to the repository's own status.
func ensureSelfIgnore(dir string) error {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return fsutil.WriteFileAtomic(path, []byte("*\n"), 0o644)
}

func renderMarkdown(a *Analysis) string {
	var b strings.Builder
	b.WriteString("# Repository Analysis\n\n")
	fmt.Fprintf(&b, "Generated %s. Regenerated automatically; edits will be lost.\n\n",
		a.Timestamp.UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	b.WriteString(a.Summary)
	b.WriteString("\n")

	if len(a.Insights) > 0 {
		b.WriteString("\n## Insights\n\n")
		for _, in := range a.Insights {
			fmt.Fprintf(&b, "- %s\n", in)
		}
	}

	b.WriteString("\n## Structure\n\n")
	fmt.Fprintf(&b, "- Project type: %s\n", a.ProjectType)
	writeList(&b, "Technologies", a.Technologies)
	writeList(&b, "Key directories", a.KeyDirectories)
	writeList(&b, "Important files", a.ImportantFiles)
	writeList(&b, "Config files", a.ConfigFiles)

	if a.LastAnalyzedHash != "" {
		fmt.Fprintf(&b, "\nAnalyzed as of commit %s.\n", shortHash(a.LastAnalyzedHash))
	}
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, ", "))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
