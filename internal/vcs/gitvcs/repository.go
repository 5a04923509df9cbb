// Package gitvcs implements the vcs.Adapter contract for git repositories
// on top of go-git.
package gitvcs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// Repository is an open handle on a non-bare git repository with at least
// one commit.
type Repository struct {
	repo *git.Repository
	path string
}

// Path returns the working tree directory.
func (r *Repository) Path() string { return r.path }

// Git exposes the underlying go-git repository.
func (r *Repository) Git() *git.Repository { return r.repo }

func openRepository(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, vcs.RepositoryNotFound(nil, "Git repository path cannot be empty.")
	}

	path = filepath.Clean(path)
	if filepath.Base(path) == git.GitDirName {
		path = filepath.Dir(path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, vcs.RepositoryNotFound(err, "Git repository path not found at location %s.", path)
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, vcs.RepositoryNotFound(err, "No git repository found at %s.", path)
	}
	r := &Repository{repo: repo, path: path}

	if _, err := repo.Worktree(); err != nil {
		_ = r.close()
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, vcs.RepositoryNotFound(err, "Git repository at %s is bare.", path)
		}
		return nil, vcs.RepositoryNotFound(err, "No git repository found at %s.", path)
	}

	if _, err := repo.Head(); err != nil {
		_ = r.close()
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, vcs.RepositoryNotFound(err, "Git repository at %s has no commits.", path)
		}
		return nil, vcs.RepositoryNotFound(err, "No git repository found at %s.", path)
	}

	return r, nil
}

// close releases pack file descriptors held by the filesystem storage.
func (r *Repository) close() error {
	if r == nil || r.repo == nil {
		return nil
	}
	if closer, ok := r.repo.Storer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
