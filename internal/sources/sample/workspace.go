// Package sample materialises the synthetic demo corpus: a small markdown
// vault and a git repository with fixed authorship and timestamps, so
// repeated builds produce identical content and identical chunk IDs.
package sample

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Workspace implements the interface.
var _ driven.SampleWorkspace = (*Workspace)(nil)

// Workspace builds the sample vault and repository on disk.
type Workspace struct{}

// New creates a new sample workspace builder.
func New() *Workspace {
	return &Workspace{}
}

// authorName and authorEmail sign every sample commit. Fixed signatures and
// timestamps keep commit hashes stable across rebuilds.
const (
	authorName  = "Test User"
	authorEmail = "test@example.com"
)

type noteFixture struct {
	name    string
	content string
	modTime time.Time
}

type commitFixture struct {
	file    string
	content string
	message string
	when    time.Time
}

var noteFixtures = []noteFixture{
	{
		name: "parser-bounds-bug.md",
		content: `# Parser Bounds Bug

The streaming parser reads one element past the end of the token buffer
when the input ends mid-statement. The bounds check uses <= where it
should use <, a classic off-by-one.

Reproduce with any truncated input file. The fix landed in the parser
repository; see the bounds check commit.
`,
		modTime: time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC),
	},
	{
		name: "retrieval-tuning.md",
		content: `# Retrieval Tuning

Lexical overlap carries most of the ranking signal. Recency decays
exponentially with a 45 day half life, so last month's notes still
surface but last year's need strong term overlap.

Current blend: 0.85 lexical, 0.15 recency. IDF weighting damps filler
words like "the" without a stopword list.
`,
		modTime: time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC),
	},
	{
		name: "weekly-sync.md",
		content: `# Weekly Sync

Discussed the evaluation harness. Recall at five and MRR cover ranking
quality; the citation hit rate checks that the first result is actually
the right document to cite.

Action: label twenty more eval queries from real searches.
`,
		modTime: time.Date(2025, 1, 22, 11, 0, 0, 0, time.UTC),
	},
}

var commitFixtures = []commitFixture{
	{
		file: "parser.go",
		content: `package parser

// Parse consumes tokens from the stream until EOF.
func Parse(tokens []Token) (*Tree, error) {
	var tree Tree
	for i := 0; i <= len(tokens); i++ {
		tree.add(tokens[i])
	}
	return &tree, nil
}
`,
		message: "feat: add streaming parser",
		when:    time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC),
	},
	{
		file: "parser.go",
		content: `package parser

// Parse consumes tokens from the stream until EOF.
func Parse(tokens []Token) (*Tree, error) {
	var tree Tree
	for i := 0; i < len(tokens); i++ {
		tree.add(tokens[i])
	}
	return &tree, nil
}
`,
		message: "fix: correct off-by-one in parser bounds check\n\nThe loop condition used <= and read one element past the end of the\ntoken buffer on truncated input.",
		when:    time.Date(2025, 1, 12, 16, 45, 0, 0, time.UTC),
	},
	{
		file: "README.md",
		content: `# Parser

A streaming token parser. See the scoring notes for how retrieval ranks
this repository's history.
`,
		message: "docs: add readme",
		when:    time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC),
	},
}

// Build creates (or reuses) the sample workspace under dir. force removes
// any existing workspace first.
func (w *Workspace) Build(_ context.Context, dir string, force bool) (*domain.SampleLayout, error) {
	if force {
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("removing workspace: %w", err)
		}
	}

	vaultDir := filepath.Join(dir, "vault")
	repoDir := filepath.Join(dir, "repo")

	if err := buildVault(vaultDir); err != nil {
		return nil, err
	}
	hashes, err := buildRepo(repoDir)
	if err != nil {
		return nil, err
	}

	return &domain.SampleLayout{
		VaultDir:    vaultDir,
		RepoDir:     repoDir,
		EvalQueries: evalQueries(vaultDir, repoDir, hashes),
	}, nil
}

// buildVault writes the note fixtures with fixed modification times.
func buildVault(vaultDir string) error {
	if err := os.MkdirAll(vaultDir, 0o755); err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}
	for _, n := range noteFixtures {
		path := filepath.Join(vaultDir, n.name)
		if err := os.WriteFile(path, []byte(n.content), 0o644); err != nil {
			return fmt.Errorf("writing note %s: %w", n.name, err)
		}
		if err := os.Chtimes(path, n.modTime, n.modTime); err != nil {
			return fmt.Errorf("setting mtime on %s: %w", n.name, err)
		}
	}
	return nil
}

// buildRepo creates the sample repository, or reuses an existing one, and
// returns the commit hash for each fixture message subject.
func buildRepo(repoDir string) (map[string]string, error) {
	repo, err := git.PlainOpen(repoDir)
	if err == nil {
		return collectHashes(repo)
	}

	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating repo dir: %w", err)
	}
	repo, err = git.PlainInit(repoDir, false)
	if err != nil {
		return nil, fmt.Errorf("initialising repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}

	for _, c := range commitFixtures {
		if err := os.WriteFile(filepath.Join(repoDir, c.file), []byte(c.content), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", c.file, err)
		}
		if _, err := wt.Add(c.file); err != nil {
			return nil, fmt.Errorf("staging %s: %w", c.file, err)
		}
		sig := &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  c.when,
		}
		if _, err := wt.Commit(c.message, &git.CommitOptions{
			Author:    sig,
			Committer: sig,
		}); err != nil {
			return nil, fmt.Errorf("committing %q: %w", c.message, err)
		}
	}

	return collectHashes(repo)
}

// collectHashes maps each commit's subject line to its hash.
func collectHashes(repo *git.Repository) (map[string]string, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	hashes := make(map[string]string)
	err = iter.ForEach(func(c *object.Commit) error {
		subject, _, _ := strings.Cut(c.Message, "\n")
		hashes[strings.TrimSpace(subject)] = c.Hash.String()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log: %w", err)
	}
	return hashes, nil
}

// evalQueries labels retrieval test cases against the materialised corpus.
func evalQueries(vaultDir, repoDir string, hashes map[string]string) []domain.EvalQuery {
	queries := []domain.EvalQuery{
		{
			Namespace: domain.SampleNamespace,
			QueryText: "parser bounds bug off by one",
			ExpectedSourceURIs: []string{
				filepath.Join(vaultDir, "parser-bounds-bug.md"),
			},
		},
		{
			Namespace: domain.SampleNamespace,
			QueryText: "lexical recency blend half life",
			ExpectedSourceURIs: []string{
				filepath.Join(vaultDir, "retrieval-tuning.md"),
			},
		},
		{
			Namespace: domain.SampleNamespace,
			QueryText: "evaluation harness recall citation",
			ExpectedSourceURIs: []string{
				filepath.Join(vaultDir, "weekly-sync.md"),
			},
		},
	}

	if hash, ok := hashes["fix: correct off-by-one in parser bounds check"]; ok {
		queries[0].ExpectedSourceURIs = append(queries[0].ExpectedSourceURIs, repoDir+"@"+hash)
	}
	if hash, ok := hashes["feat: add streaming parser"]; ok {
		queries = append(queries, domain.EvalQuery{
			Namespace:          domain.SampleNamespace,
			QueryText:          "streaming parser token stream",
			ExpectedSourceURIs: []string{repoDir + "@" + hash},
		})
	}

	return queries
}
