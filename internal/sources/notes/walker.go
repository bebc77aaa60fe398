// Package notes reads markdown files from a vault directory.
package notes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Walker implements the interface.
var _ driven.NoteSource = (*Walker)(nil)

// Walker finds markdown notes under a vault root. Traversal is lexical, so
// two walks of an unchanged vault yield the same order.
type Walker struct{}

// New creates a new vault walker.
func New() *Walker {
	return &Walker{}
}

// Notes returns every markdown file under root with absolute paths.
func (w *Walker) Notes(ctx context.Context, root string) ([]domain.NoteFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s: %w", absRoot, domain.ErrInvalidInput)
	}

	var files []domain.NoteFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Skip hidden directories such as .git and .obsidian.
			if path != absRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(d.Name()) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading note %s: %w", path, err)
		}
		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat note %s: %w", path, err)
		}

		files = append(files, domain.NoteFile{
			Path:    path,
			Content: content,
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Note reads a single markdown file.
func (w *Walker) Note(_ context.Context, path string) (domain.NoteFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return domain.NoteFile{}, fmt.Errorf("resolving note path: %w", err)
	}
	if !isMarkdown(absPath) {
		return domain.NoteFile{}, fmt.Errorf("%s is not a markdown file: %w", absPath, domain.ErrInvalidInput)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return domain.NoteFile{}, fmt.Errorf("reading note %s: %w", absPath, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return domain.NoteFile{}, fmt.Errorf("stat note %s: %w", absPath, err)
	}

	return domain.NoteFile{
		Path:    absPath,
		Content: content,
		ModTime: info.ModTime(),
	}, nil
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}
