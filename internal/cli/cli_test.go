package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
)

var managedVars = []string{
	"COMMITSCRIBE_PROVIDER",
	"COMMITSCRIBE_MODEL",
	"COMMITSCRIBE_CHAIN",
	"COMMITSCRIBE_ANALYSIS_THRESHOLD",
	"COMMITSCRIBE_PARALLEL",
	"COMMITSCRIBE_LANGUAGE",
	"COMMITSCRIBE_TEMPLATE",
	"COMMITSCRIBE_TEMPLATE_FILE",
	"COMMITSCRIBE_DATA_DIR",
	"COMMITSCRIBE_DEBUG_LOG",
}

// setupEnv gives the test a private data directory and an empty working
// directory, and unsets every variable the config loader reads so the
// developer's environment cannot leak in.
func setupEnv(t *testing.T) string {
	t.Helper()
	for _, name := range managedVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	data := t.TempDir()
	t.Setenv("COMMITSCRIBE_DATA_DIR", data)
	t.Chdir(t.TempDir())
	return data
}

// initRepo creates a throwaway repository with local identity config.
// Tests that need the git binary skip when it is not installed.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not installed")
	}
	dir := t.TempDir()
	mustGit(t, dir, "init", "-q")
	mustGit(t, dir, "config", "user.email", "dev@example.com")
	mustGit(t, dir, "config", "user.name", "dev")
	return dir
}

func mustGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// seedCommit gives the repository a HEAD and a clean tree.
func seedCommit(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "README.md", "fixture\n")
	mustGit(t, dir, "add", ".")
	mustGit(t, dir, "commit", "-q", "-m", "chore: initial import")
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// buildCapture records what the command handed to the client factory.
type buildCapture struct {
	provider string
	opts     llm.BuildOptions
}

// stubClient substitutes fake for the real provider transports and
// restores the factory when the test ends.
func stubClient(t *testing.T, fake *llmclient.FakeClient) *buildCapture {
	t.Helper()
	rec := &buildCapture{}
	prev := buildClient
	buildClient = func(_ context.Context, provider string, opts llm.BuildOptions) (llmclient.LLMClient, error) {
		rec.provider = provider
		rec.opts = opts
		return fake, nil
	}
	t.Cleanup(func() { buildClient = prev })
	return rec
}

func stubConfirm(t *testing.T, answer bool) {
	t.Helper()
	prev := confirmCommit
	confirmCommit = func(string) (bool, error) { return answer, nil }
	t.Cleanup(func() { confirmCommit = prev })
}

func TestRootVersionFlag(t *testing.T) {
	out, err := runCmd(t, "--version")
	require.NoError(t, err)
	require.Contains(t, out, "test")
}
