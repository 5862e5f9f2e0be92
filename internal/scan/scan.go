// Package scan walks a repository working tree and distills the
// structure a language model needs to reason about it: project type,
// technologies, key directories, entry points, manifests, and a
// cleaned README.
package scan

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
	gitignore "github.com/sabhiram/go-gitignore"
)

const (
	maxScanFiles       = 4000
	languageSampleSize = 8 << 10
	maxLanguageFile    = 1 << 20
	maxReadmeRunes     = 4000
	maxTechnologies    = 8
	maxKeyDirectories  = 8
	maxImportantFiles  = 10
)

// skipDirs are never descended into regardless of .gitignore rules.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	".next":        true,
	".cache":       true,
	".idea":        true,
	".vscode":      true,
}

// Structure is what a walk of the working tree produced. Paths are
// repository-relative with forward slashes.
type Structure struct {
	Root           string   `json:"root"`
	ProjectType    string   `json:"projectType"`
	Technologies   []string `json:"technologies"`
	KeyDirectories []string `json:"keyDirectories"`
	ImportantFiles []string `json:"importantFiles"`
	ConfigFiles    []string `json:"configFiles"`
	ReadmeContent  string   `json:"readmeContent"`
	FileCount      int      `json:"fileCount"`
}

// Scan walks root and returns its structure. Files matched by the
// repository's .gitignore are excluded, as is anything under the
// dependency and VCS directories in skipDirs. The walk stops early
// once maxScanFiles files have been seen.
func Scan(ctx context.Context, root string) (*Structure, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan: resolve root: %w", err)
	}
	if fi, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("scan: %s is not a directory", root)
	}

	matcher := loadIgnore(abs)
	st := &Structure{Root: abs}
	langCounts := map[string]int{}
	dirCounts := map[string]int{}
	readmeRel := ""

	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(abs, path)
		if rerr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			if skipDirs[name] {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") && name != ".github" {
				return filepath.SkipDir
			}
			if matcher.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.MatchesPath(rel) {
			return nil
		}
		if st.FileCount >= maxScanFiles {
			return filepath.SkipAll
		}
		st.FileCount++

		if matchAny(configPatterns, rel) {
			st.ConfigFiles = append(st.ConfigFiles, rel)
		}
		if matchAny(importantPatterns, rel) && len(st.ImportantFiles) < maxImportantFiles {
			st.ImportantFiles = append(st.ImportantFiles, rel)
		}
		if readmeRel == "" && isReadme(rel) {
			readmeRel = rel
		}
		if top, ok := topDirectory(rel); ok {
			dirCounts[top]++
		}
		if lang := detectLanguage(path, name, d); lang != "" {
			langCounts[lang]++
		}
		return nil
	})
	if walkErr != nil && walkErr != filepath.SkipAll {
		return nil, fmt.Errorf("scan: walk %s: %w", root, walkErr)
	}

	sort.Strings(st.ConfigFiles)
	sort.Strings(st.ImportantFiles)
	st.Technologies = rankByCount(langCounts, maxTechnologies)
	st.KeyDirectories = rankByCount(dirCounts, maxKeyDirectories)
	st.ProjectType = classifyProject(st.ConfigFiles)
	st.ReadmeContent = loadReadme(abs, readmeRel)
	return st, nil
}

// loadIgnore builds the ignore matcher from the root .gitignore plus
// the analysis artifact directory, which never belongs in a scan.
func loadIgnore(root string) *gitignore.GitIgnore {
	lines := []string{".commitscribe/"}
	if raw, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
		lines = append(lines, strings.Split(string(raw), "\n")...)
	}
	return gitignore.CompileIgnoreLines(lines...)
}

// detectLanguage samples the head of a file and asks enry for its
// language. Oversized files, binaries, and data or prose formats
// return "".
func detectLanguage(path, name string, d fs.DirEntry) string {
	info, err := d.Info()
	if err != nil || info.Size() > maxLanguageFile {
		return ""
	}
	head, err := readHead(path, languageSampleSize)
	if err != nil || enry.IsBinary(head) {
		return ""
	}
	lang := enry.GetLanguage(name, head)
	if lang == enry.OtherLanguage {
		return ""
	}
	switch enry.GetLanguageType(lang) {
	case enry.Programming, enry.Markup:
		return lang
	default:
		return ""
	}
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

func isReadme(rel string) bool {
	if strings.Contains(rel, "/") {
		return false
	}
	base := strings.ToLower(rel)
	return base == "readme.md" || base == "readme" || base == "readme.rst" || base == "readme.txt"
}

// topDirectory returns the first path segment of a nested file.
func topDirectory(rel string) (string, bool) {
	i := strings.Index(rel, "/")
	if i <= 0 {
		return "", false
	}
	return rel[:i], true
}

func loadReadme(root, rel string) string {
	if rel == "" {
		return ""
	}
	raw, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return ""
	}
	return clampRunes(CleanMarkdown(string(raw)), maxReadmeRunes)
}
