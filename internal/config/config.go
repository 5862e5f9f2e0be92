// Package config loads runtime settings from the environment, with an
// optional .env file layered underneath. Flags on the CLI override
// whatever Load produced; nothing here is persisted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the resolved runtime configuration. Zero values mean
// "use the built-in default" for every field except Provider and
// Threshold, which Load always fills.
type Config struct {
	// Provider selects the chat backend: openai, groq, anthropic, gemini.
	Provider string
	// Model overrides the provider's default model when non-empty.
	Model string
	// UseChain picks the multi-stage pipeline over the single-call path.
	UseChain bool
	// Threshold is the commit-count staleness bound for repository
	// analysis. Always at least 1.
	Threshold int
	// Parallel caps the summary fan-out. Zero lets the pipeline decide.
	Parallel int
	// Language of generated commit messages. Empty means English.
	Language string
	// Template is free-text commit formatting guidance, optional.
	Template string
	// DataDir holds the analysis store and the usage ledger.
	DataDir string
	// DebugLog enables file logging when non-empty.
	DebugLog string
}

const (
	defaultProvider  = "openai"
	defaultThreshold = 10
)

// Load reads .env (if present), then the COMMITSCRIBE_* environment
// variables, and applies defaults. The only failure mode is a template
// file that is named but cannot be read.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider:  firstNonEmpty(strings.TrimSpace(os.Getenv("COMMITSCRIBE_PROVIDER")), defaultProvider),
		Model:     strings.TrimSpace(os.Getenv("COMMITSCRIBE_MODEL")),
		UseChain:  envBool("COMMITSCRIBE_CHAIN", true),
		Threshold: envInt("COMMITSCRIBE_ANALYSIS_THRESHOLD", defaultThreshold),
		Parallel:  envInt("COMMITSCRIBE_PARALLEL", 0),
		Language:  strings.TrimSpace(os.Getenv("COMMITSCRIBE_LANGUAGE")),
		Template:  os.Getenv("COMMITSCRIBE_TEMPLATE"),
		DataDir:   firstNonEmpty(strings.TrimSpace(os.Getenv("COMMITSCRIBE_DATA_DIR")), defaultDataDir()),
		DebugLog:  strings.TrimSpace(os.Getenv("COMMITSCRIBE_DEBUG_LOG")),
	}

	if cfg.Threshold < 1 {
		cfg.Threshold = 1
	}
	if cfg.Parallel < 0 {
		cfg.Parallel = 0
	}

	if path := strings.TrimSpace(os.Getenv("COMMITSCRIBE_TEMPLATE_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read template file: %w", err)
		}
		cfg.Template = string(raw)
	}

	return cfg, nil
}

// APIKey returns the credential for provider from its conventional
// environment variable, or "" when none is set.
func APIKey(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case "groq":
		return strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	case "anthropic":
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case "gemini":
		return firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")))
	}
	return ""
}

// AnalysisDir is where per-repository analysis records live.
func (c *Config) AnalysisDir() string {
	return filepath.Join(c.DataDir, "analyses")
}

// UsagePath is the persisted usage ledger file.
func (c *Config) UsagePath() string {
	return filepath.Join(c.DataDir, "usage.json")
}

func defaultDataDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "commitscribe")
	}
	return filepath.Join(os.TempDir(), "commitscribe")
}

func envBool(name string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
