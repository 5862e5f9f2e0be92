package git

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// maxHistory caps how many commits Recent will ever read, regardless of
// the requested limit.
const maxHistory = 200

// Commit is one history entry: the state hash, the full message, and
// the committer timestamp.
type Commit struct {
	Hash    string
	Message string
	When    time.Time
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimRight(subject, "\r")
}

// Repo is an opened repository. Diff extraction shells out to the git
// binary; history and HEAD go through go-git.
type Repo struct {
	root   string
	gogit  *gogit.Repository
	runner *runner
}

// Open locates the repository containing path, walking up to the
// enclosing work tree the way git itself does.
func Open(path string) (*Repo, error) {
	gr, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}
	wt, err := gr.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}
	root := wt.Filesystem.Root()
	return &Repo{root: root, gogit: gr, runner: &runner{dir: root}}, nil
}

// Root returns the absolute path of the work tree. It identifies the
// repository everywhere else: guard keys, analysis store keys, the
// .commitscribe directory.
func (r *Repo) Root() string { return r.root }

// Head returns the hash of the current HEAD commit.
func (r *Repo) Head(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref, err := r.gogit.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// Recent returns up to limit commits reachable from HEAD, newest first.
// A repository without commits yields an empty slice, not an error.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	ref, err := r.gogit.Head()
	if err != nil {
		// No commits yet. The caller treats an empty history like a
		// missing anchor.
		return nil, nil
	}

	iter, err := r.gogit.Log(&gogit.LogOptions{From: ref.Hash(), Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer iter.Close()

	out := make([]Commit, 0, limit)
	for len(out) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		out = append(out, commitEntry(c))
	}
	return out, nil
}

func commitEntry(c *object.Commit) Commit {
	return Commit{
		Hash:    c.Hash.String(),
		Message: strings.TrimSpace(c.Message),
		When:    c.Committer.When,
	}
}

// HasStagedChanges reports whether the index differs from HEAD.
func (r *Repo) HasStagedChanges(ctx context.Context) (bool, error) {
	out, err := r.runner.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Commit records the staged changes with message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.runner.run(ctx, "commit", "-m", message)
	return err
}
