package scan

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// configPatterns are slash-separated globs, matched against
// repository-relative paths, that identify build and tool manifests.
var configPatterns = []string{
	"go.mod",
	"go.sum",
	"package.json",
	"tsconfig.json",
	"pyproject.toml",
	"requirements.txt",
	"setup.py",
	"Cargo.toml",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
	"Gemfile",
	"composer.json",
	"Makefile",
	"CMakeLists.txt",
	"Dockerfile",
	"docker-compose.yml",
	"docker-compose.yaml",
	".github/workflows/*.yml",
	".github/workflows/*.yaml",
	".gitlab-ci.yml",
	"*.tf",
	".env.example",
}

// importantPatterns identify entry points and top-level documents a
// reader would open first.
var importantPatterns = []string{
	"main.go",
	"cmd/*/main.go",
	"src/main.*",
	"src/index.*",
	"index.js",
	"index.ts",
	"app.py",
	"manage.py",
	"src/lib.rs",
	"src/main.rs",
	"LICENSE",
	"CONTRIBUTING.md",
	"CHANGELOG.md",
}

// projectMarkers map a manifest to a project type label, in priority
// order. The first marker present wins.
var projectMarkers = []struct {
	file  string
	label string
}{
	{"go.mod", "Go module"},
	{"Cargo.toml", "Rust crate"},
	{"pyproject.toml", "Python project"},
	{"setup.py", "Python project"},
	{"requirements.txt", "Python project"},
	{"tsconfig.json", "TypeScript project"},
	{"package.json", "Node.js project"},
	{"pom.xml", "Java (Maven) project"},
	{"build.gradle", "Java (Gradle) project"},
	{"build.gradle.kts", "Kotlin (Gradle) project"},
	{"Gemfile", "Ruby project"},
	{"composer.json", "PHP project"},
	{"CMakeLists.txt", "CMake project"},
}

func matchAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// classifyProject picks a project type from the manifests seen during
// the walk. Unknown repositories are labelled as such rather than
// guessed from file extensions.
func classifyProject(configFiles []string) string {
	present := make(map[string]bool, len(configFiles))
	for _, f := range configFiles {
		present[f] = true
	}
	for _, m := range projectMarkers {
		if present[m.file] {
			return m.label
		}
	}
	return "unknown"
}

// rankByCount returns keys sorted by descending count, ties broken
// alphabetically, capped at limit.
func rankByCount(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
