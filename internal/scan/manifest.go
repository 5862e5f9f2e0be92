package scan

import (
	"os"
	"path/filepath"
)

const (
	maxManifestBytes = 4000
	maxManifests     = 12
)

// lockfiles are listed in ConfigFiles but their content is generated
// noise, so Manifests never reads them.
var lockfiles = map[string]bool{
	"go.sum":            true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"composer.lock":     true,
	"Gemfile.lock":      true,
}

// Manifests reads the head of each discovered config file so a model
// can see declared dependencies and build wiring without the full
// file. Content is capped per file and the map is capped in size.
func Manifests(st *Structure) map[string]string {
	out := make(map[string]string, len(st.ConfigFiles))
	for _, rel := range st.ConfigFiles {
		if len(out) >= maxManifests {
			break
		}
		if lockfiles[filepath.Base(rel)] {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(st.Root, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if len(raw) > maxManifestBytes {
			raw = raw[:maxManifestBytes]
		}
		out[rel] = string(raw)
	}
	return out
}
