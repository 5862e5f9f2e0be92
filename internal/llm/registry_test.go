package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitscribe/internal/llmclient"
)

func TestRegistry_ResolveNormalizesInput(t *testing.T) {
	p, err := Resolve("  Gemini ", "")
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Provider)
	assert.Equal(t, "gemini-2.0-flash", p.Model)

	p, err = Resolve("openai", "  gpt-4.1-mini ")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", p.Model, "model override should win over the profile default")
}

func TestRegistry_UnknownProvider(t *testing.T) {
	_, err := Resolve("copilot", "")
	var ce *llmclient.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestRegistry_ProvidersSorted(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "gemini", "groq", "openai"}, Providers())
}

func TestRegistry_BuildRequiresCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := Build(context.Background(), "openai", BuildOptions{})
	var ce *llmclient.ConfigError
	require.ErrorAs(t, err, &ce, "building without a key must fail before any network use")
}

func TestRegistry_BuildWrapsClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cli, err := Build(context.Background(), "openai", BuildOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	assert.Equal(t, "openai", cli.Name())
	assert.Equal(t, "gpt-4o-mini", cli.Model())
}

func TestStageContext(t *testing.T) {
	assert.Equal(t, "unknown", StageFrom(context.Background()))
	ctx := WithStage(context.Background(), "summarize")
	assert.Equal(t, "summarize", StageFrom(ctx))
}
