package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitscribe/internal/llmclient"
)

const analyzeReply = `{"summary":"A small Go fixture used in tests.","insights":["single package, no dependencies"]}`

func analysisFake() *llmclient.FakeClient {
	return &llmclient.FakeClient{
		Respond: func(int, []llmclient.Message) (string, error) { return analyzeReply, nil },
	}
}

func TestAnalyzeLifecycle(t *testing.T) {
	setupEnv(t)
	dir := initRepo(t)
	seedCommit(t, dir)
	t.Chdir(dir)
	fake := analysisFake()
	stubClient(t, fake)

	out, err := runCmd(t, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis initialized")
	assert.Contains(t, out, "analysis.md")
	require.Equal(t, 1, fake.Calls())

	artifact := filepath.Join(dir, ".commitscribe", "analysis.md")
	raw, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "A small Go fixture used in tests.")

	// A second run within the threshold does not call the model.
	out, err = runCmd(t, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis fresh")
	assert.Equal(t, 1, fake.Calls())

	out, err = runCmd(t, "analyze", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis updated")
	assert.Equal(t, 2, fake.Calls())

	out, err = runCmd(t, "analyze", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis cleared")
	_, statErr := os.Stat(artifact)
	assert.True(t, os.IsNotExist(statErr))

	// With the store empty again, a forced refresh starts from scratch.
	out, err = runCmd(t, "analyze", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis initialized")
	assert.Equal(t, 3, fake.Calls())
}

func TestAnalyzeRefreshAndClearAreExclusive(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "analyze", "--refresh", "--clear")
	require.Error(t, err)
}

func TestAnalyzeOutsideRepository(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "analyze")
	require.Error(t, err)
}
