package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

const fixtureReadme = `# Fixture Project

![logo](assets/logo.png)

<!-- internal release notes -->

A demo service for structure scanning.




Extra spacing above collapses.
`

func TestScanFixtureTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":                 "secrets.txt\nlogs/\n",
		"go.mod":                     "module fixture\n\ngo 1.24\n",
		"main.go":                    "package main\n\nfunc main() {}\n",
		"README.md":                  fixtureReadme,
		"Dockerfile":                 "FROM golang:1.24\nCOPY . /src\n",
		".github/workflows/ci.yml":   "on: push\njobs: {}\n",
		"internal/server/server.go":  "package server\n\ntype Server struct{}\n",
		"internal/server/handler.go": "package server\n\nfunc handle() {}\n",
		"web/app.js":                 "export function greet(name) {\n  return `hi ${name}`;\n}\n",
		"secrets.txt":                "token=abc\n",
		"logs/debug.log":             "noise\n",
		"node_modules/pkg/index.js":  "module.exports = 1;\n",
		".commitscribe/analysis.md":  "# cached analysis\n",
	})
	writeTree(t, root, map[string]string{
		"web/logo.png": "\x89PNG\x00\x00\x00binary",
	})

	st, err := Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "Go module", st.ProjectType)
	assert.Equal(t, 10, st.FileCount)
	assert.Equal(t, []string{".github/workflows/ci.yml", "Dockerfile", "go.mod"}, st.ConfigFiles)
	assert.Equal(t, []string{"main.go"}, st.ImportantFiles)
	assert.Equal(t, []string{"internal", "web", ".github"}, st.KeyDirectories)

	assert.Contains(t, st.Technologies, "Go")
	assert.Contains(t, st.Technologies, "JavaScript")
	assert.NotContains(t, st.Technologies, "YAML")
	assert.NotContains(t, st.Technologies, "Markdown")

	assert.Contains(t, st.ReadmeContent, "Fixture Project")
	assert.Contains(t, st.ReadmeContent, "A demo service for structure scanning.")
	assert.NotContains(t, st.ReadmeContent, "![")
	assert.NotContains(t, st.ReadmeContent, "<!--")
	assert.NotContains(t, st.ReadmeContent, "\n\n\n")
}

func TestScanExcludesIgnoredAndSkippedPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":               "*.secret\ntmp/\n",
		"app.go":                   "package app\n",
		"api.secret":               "key\n",
		"tmp/cache.go":             "package cache\n",
		"node_modules/x/y.js":      "1\n",
		".commitscribe/usage.json": "{}\n",
	})

	st, err := Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, st.FileCount) // .gitignore and app.go
	assert.NotContains(t, st.KeyDirectories, "tmp")
	assert.NotContains(t, st.KeyDirectories, "node_modules")
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestScanRootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Scan(context.Background(), file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestScanCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.go": "package a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManifestsReadsConfigHeads(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":     "module fixture\n",
		"go.sum":     strings.Repeat("h1:abc\n", 800),
		"Dockerfile": strings.Repeat("x", maxManifestBytes+1000),
	})
	st := &Structure{
		Root:        root,
		ConfigFiles: []string{"Dockerfile", "go.mod", "go.sum"},
	}

	out := Manifests(st)

	assert.Equal(t, "module fixture\n", out["go.mod"])
	assert.NotContains(t, out, "go.sum")
	assert.Len(t, out["Dockerfile"], maxManifestBytes)
}

func TestManifestsSkipsUnreadableFiles(t *testing.T) {
	st := &Structure{
		Root:        t.TempDir(),
		ConfigFiles: []string{"go.mod"},
	}
	assert.Empty(t, Manifests(st))
}

func TestCleanMarkdown(t *testing.T) {
	in := "intro\n\n![shot](a.png)\n<img src=\"b.png\">\n<!-- hidden\nnote -->\ntail\n\n\n\nend\n"
	out := CleanMarkdown(in)

	assert.NotContains(t, out, "![")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "\n\n\n")
	assert.True(t, strings.HasPrefix(out, "intro"))
	assert.True(t, strings.HasSuffix(out, "end"))
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "short", clampRunes("short", 10))

	long := strings.Repeat("é", 50)
	got := clampRunes(long, 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("é", 10)))
	assert.True(t, strings.HasSuffix(got, "... (truncated)"))
}

func TestClassifyProject(t *testing.T) {
	cases := []struct {
		name    string
		configs []string
		want    string
	}{
		{"go", []string{"Dockerfile", "go.mod"}, "Go module"},
		{"typescript over node", []string{"package.json", "tsconfig.json"}, "TypeScript project"},
		{"node only", []string{"package.json"}, "Node.js project"},
		{"rust", []string{"Cargo.toml"}, "Rust crate"},
		{"nothing known", []string{"Makefile"}, "unknown"},
		{"empty", nil, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyProject(tc.configs))
		})
	}
}

func TestRankByCount(t *testing.T) {
	counts := map[string]int{"web": 3, "docs": 1, "api": 3, "ops": 2}

	assert.Equal(t, []string{"api", "web", "ops", "docs"}, rankByCount(counts, 10))
	assert.Equal(t, []string{"api", "web"}, rankByCount(counts, 2))
	assert.Empty(t, rankByCount(nil, 4))
}

func TestMatchAny(t *testing.T) {
	assert.True(t, matchAny(configPatterns, "go.mod"))
	assert.True(t, matchAny(configPatterns, ".github/workflows/ci.yml"))
	assert.False(t, matchAny(configPatterns, "internal/go.mod"))
	assert.True(t, matchAny(importantPatterns, "cmd/server/main.go"))
	assert.False(t, matchAny(importantPatterns, "pkg/util.go"))
}

func TestTopDirectory(t *testing.T) {
	top, ok := topDirectory("internal/server/handler.go")
	require.True(t, ok)
	assert.Equal(t, "internal", top)

	_, ok = topDirectory("main.go")
	assert.False(t, ok)
}
