// Package gitlog reads commit history from local git repositories.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.CommitSource = (*Provider)(nil)

// Provider walks a repository's history from HEAD.
type Provider struct{}

// New creates a new commit provider.
func New() *Provider {
	return &Provider{}
}

// Commits returns up to maxCommits non-merge commits reachable from HEAD,
// newest first, each with its patch against the first parent. maxCommits <= 0
// means no limit.
func (p *Provider) Commits(ctx context.Context, repoPath string, maxCommits int) ([]domain.Commit, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving repo path: %w", err)
	}

	repo, err := git.PlainOpen(absPath)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", absPath, domain.ErrNotRepository)
		}
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("reading commit log: %w", err)
	}
	defer iter.Close()

	var commits []domain.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.NumParents() > 1 {
			return nil
		}

		patch, err := patchText(ctx, c)
		if err != nil {
			return fmt.Errorf("building patch for %s: %w", c.Hash, err)
		}

		subject, body := splitMessage(c.Message)
		commits = append(commits, domain.Commit{
			RepoPath:    absPath,
			Hash:        c.Hash.String(),
			Subject:     subject,
			Body:        body,
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
			When:        c.Author.When,
			Patch:       patch,
		})

		if maxCommits > 0 && len(commits) >= maxCommits {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return commits, nil
}

// patchText renders the commit's change against its first parent: a stat
// summary followed by the unified diff. Root commits get the stat summary
// only.
func patchText(ctx context.Context, c *object.Commit) (string, error) {
	stats, err := c.StatsContext(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, s := range stats {
		b.WriteString(s.String())
	}

	parents := c.Parents()
	defer parents.Close()
	parent, err := parents.Next()
	if err != nil {
		// Root commit, nothing to diff against.
		return strings.TrimRight(b.String(), "\n"), nil
	}

	patch, err := parent.PatchContext(ctx, c)
	if err != nil {
		return "", err
	}
	b.WriteString("\n")
	b.WriteString(patch.String())

	return strings.TrimRight(b.String(), "\n"), nil
}

// splitMessage separates the subject line from the message body.
func splitMessage(message string) (subject, body string) {
	subject, body, _ = strings.Cut(message, "\n")
	return strings.TrimSpace(subject), strings.TrimSpace(body)
}
