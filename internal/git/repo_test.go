package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitscribe/internal/chain"
)

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

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// commitAt commits the index with a fixed timestamp so history order
// is deterministic even when commits land within the same second.
func commitAt(t *testing.T, dir, message, date string) {
	t.Helper()
	cmd := exec.Command("git", "commit", "-q", "-m", message)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_COMMITTER_DATE="+date, "GIT_AUTHOR_DATE="+date)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git commit: %s", out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpenFindsWorkTreeRoot(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "sub/deep/file.txt", "x\n")

	repo, err := Open(filepath.Join(dir, "sub", "deep"))
	require.NoError(t, err)

	wantRoot, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(repo.Root())
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
}

func TestOpenFailsOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not installed")
	}
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}

func TestStagedDiffsCollectsChangeSet(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "keep.txt", "one\ntwo\n")
	mustGit(t, dir, "add", ".")
	commitAt(t, dir, "initial", "2026-08-22T10:00:00Z")

	writeFile(t, dir, "keep.txt", "one\nchanged\n")
	writeFile(t, dir, "new.txt", "fresh content\n")
	mustGit(t, dir, "add", "keep.txt", "new.txt")
	writeFile(t, dir, "stray.txt", "not staged\n")

	repo, err := Open(dir)
	require.NoError(t, err)
	diffs, err := repo.StagedDiffs(context.Background())
	require.NoError(t, err)

	byPath := make(map[string]chain.FileDiff, len(diffs))
	for _, d := range diffs {
		byPath[d.Path] = d
	}
	require.Len(t, byPath, 3)

	keep := byPath["keep.txt"]
	assert.Equal(t, chain.ChangeModified, keep.Kind)
	require.NotEmpty(t, keep.Hunks)
	assert.Contains(t, keep.Hunks[0].Added, "changed")
	assert.Contains(t, keep.Hunks[0].Removed, "two")

	assert.Equal(t, chain.ChangeAdded, byPath["new.txt"].Kind)
	assert.Contains(t, byPath["new.txt"].Patch, "+fresh content")

	stray := byPath["stray.txt"]
	assert.Equal(t, chain.ChangeUntracked, stray.Kind)
	assert.True(t, strings.HasPrefix(stray.Patch, "@@ -0,0 +1,1 @@"))
	assert.Equal(t, []string{"not staged"}, stray.Hunks[0].Added)
}

func TestStagedDiffsEmptyIndex(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "keep.txt", "one\n")
	mustGit(t, dir, "add", ".")
	commitAt(t, dir, "initial", "2026-08-22T10:00:00Z")

	repo, err := Open(dir)
	require.NoError(t, err)

	diffs, err := repo.StagedDiffs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, diffs)

	staged, err := repo.HasStagedChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, staged)
}

func TestRecentNewestFirst(t *testing.T) {
	dir := initRepo(t)
	for i, msg := range []string{"first", "second", "third"} {
		writeFile(t, dir, "f.txt", msg+"\n")
		mustGit(t, dir, "add", ".")
		commitAt(t, dir, msg, "2026-08-22T10:00:0"+string(rune('0'+i))+"Z")
	}

	repo, err := Open(dir)
	require.NoError(t, err)

	commits, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, "third", commits[0].Message)
	assert.Equal(t, "second", commits[1].Message)
	assert.Equal(t, "first", commits[2].Message)

	head, err := repo.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, head, commits[0].Hash)

	capped, err := repo.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	assert.Equal(t, "third", capped[0].Message)
}

func TestRecentEmptyRepository(t *testing.T) {
	dir := initRepo(t)
	repo, err := Open(dir)
	require.NoError(t, err)

	commits, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestCommitRecordsStagedChanges(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "keep.txt", "one\n")
	mustGit(t, dir, "add", ".")
	commitAt(t, dir, "initial", "2026-08-22T10:00:00Z")

	writeFile(t, dir, "keep.txt", "two\n")
	mustGit(t, dir, "add", "keep.txt")

	repo, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Commit(context.Background(), "fix: update keep"))

	commits, err := repo.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "fix: update keep", commits[0].Message)

	staged, err := repo.HasStagedChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, staged)
}

func TestCommitSubject(t *testing.T) {
	c := Commit{Message: "feat: add parser\n\nlong body here"}
	assert.Equal(t, "feat: add parser", c.Subject())
	assert.Equal(t, "one line", Commit{Message: "one line"}.Subject())
}

func TestCancelledContextStopsCommands(t *testing.T) {
	dir := initRepo(t)
	repo, err := Open(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.StagedDiffs(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
