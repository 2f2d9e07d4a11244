package schemastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-loform/pkg/schema"
)

// Watch invalidates cached documents when files under root change. root is the
// operating-system directory backing the store's fs.FS; its immediate
// subdirectories are the schema categories. Watching stops when ctx is done.
func (s *DirStore) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("schemastore: create watcher: %w", err)
	}

	dirs := []string{root}
	entries, err := os.ReadDir(root)
	if err != nil {
		_ = watcher.Close()
		return fmt.Errorf("schemastore: read %s: %w", root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("schemastore: watch %s: %w", dir, err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleEvent(root, watcher, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("schema watcher error", "error", err)
			}
		}
	}()

	s.logger.Debug("watching schema directory", "root", root, "dirs", len(dirs))
	return nil
}

func (s *DirStore) handleEvent(root string, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	// a new category directory
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				s.logger.Warn("schema watcher: add directory", "dir", event.Name, "error", err)
			}
			return
		}
	}

	id, ok := documentID(root, event.Name)
	if !ok {
		return
	}
	s.Invalidate(id)
	s.logger.Debug("schema document changed", "id", id, "op", event.Op.String())
	if s.onChange != nil {
		s.onChange(id)
	}
}

// documentID maps <root>/<category>/<type>.<ext> to "<category>.<type>".
func documentID(root, name string) (string, bool) {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	category, file, found := strings.Cut(rel, "/")
	if !found || strings.Contains(file, "/") {
		return "", false
	}
	ext := filepath.Ext(file)
	if !knownExtension(strings.ToLower(ext)) {
		return "", false
	}
	return schema.Key(category, strings.TrimSuffix(file, ext)), true
}
