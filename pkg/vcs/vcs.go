// Package vcs clones templates and initializes repositories for generated
// projects.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const DefaultCommitMessage = "Initial commit from nullslate"

// Author overrides the commit author. When nil, the author comes from the
// user's git configuration.
type Author struct {
	Name  string
	Email string
}

// Clone fetches the default branch of url into dir with a history depth of
// one. dir must be empty or absent.
func Clone(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// Init creates a repository in dir, stages every file and records the
// initial commit.
func Init(dir, message string, author *Author) (plumbing.Hash, error) {
	if message == "" {
		message = DefaultCommitMessage
	}

	repo, err := git.PlainInit(dir, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return plumbing.ZeroHash, fmt.Errorf("%s is already a git repository", dir)
	} else if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("initializing repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("opening worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("staging files: %w", err)
	}

	opts := &git.CommitOptions{}
	if author != nil {
		opts.Author = &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		}
	}

	hash, err := wt.Commit(message, opts)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing: %w", err)
	}

	return hash, nil
}
