package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitService versions the store with go-git, no git binary required. Commits
// are best effort and happen only after a transaction has fully committed;
// the store never depends on git for consistency.
type GitService struct {
	dir  string
	repo *gogit.Repository
}

const (
	gitAuthorName  = "brain"
	gitAuthorEmail = "brain@localhost"
)

// OpenGit opens an existing repository at root. Returns nil without error
// when root is not a repository, so callers can attach versioning
// opportunistically.
func OpenGit(root string) (*GitService, error) {
	if _, err := os.Stat(filepath.Join(root, gogit.GitDirName)); err != nil {
		return nil, nil
	}
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &GitService{dir: root, repo: repo}, nil
}

// InitGit initializes a repository at root, or opens the existing one.
func InitGit(root string) (*GitService, error) {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		repo, err = gogit.PlainInit(root, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repository: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = gitAuthorName
		cfg.User.Email = gitAuthorEmail
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &GitService{dir: root, repo: repo}, nil
}

// Commit stages the given root-relative paths and commits them. Paths that
// no longer exist are staged as deletions. A clean worktree commits nothing.
func (g *GitService) Commit(message string, paths []string) error {
	w, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	for _, p := range paths {
		if _, err := w.Add(filepath.ToSlash(p)); err != nil {
			return fmt.Errorf("failed to stage %s: %w", p, err)
		}
	}
	status, err := w.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return nil
	}
	_, err = w.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  gitAuthorName,
			Email: gitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
