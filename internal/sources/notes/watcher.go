package notes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Watcher implements the interface.
var _ driven.NoteWatcher = (*Watcher)(nil)

// Watcher reports markdown files that change under a vault root.
type Watcher struct{}

// NewWatcher creates a new vault watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Watch sends the absolute path of each created or modified markdown file
// until ctx is cancelled. Subdirectories created while watching are picked
// up as they appear.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := addRecursive(fw, absRoot); err != nil {
		fw.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer fw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Create) {
					// New directories need their own watch.
					if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
						_ = addRecursive(fw, event.Name)
						continue
					}
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
					continue
				}
				if !isMarkdown(event.Name) {
					continue
				}
				select {
				case out <- event.Name:
				case <-ctx.Done():
					return
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

// addRecursive watches path and every directory beneath it. Non-directory
// paths are ignored.
func addRecursive(fw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may have vanished between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}
