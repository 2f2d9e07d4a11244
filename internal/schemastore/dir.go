package schemastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-loform/pkg/schema"
)

// Extensions lists the file extensions probed for a document, in order.
var Extensions = []string{".json", ".yaml", ".yml"}

// DirStore reads schema documents laid out as <category>/<type>.<ext> from an
// fs.FS. Parsed documents are cached until invalidated.
type DirStore struct {
	fsys     fs.FS
	logger   *slog.Logger
	onChange func(id string)

	mu    sync.RWMutex
	cache map[string]schema.Document
}

var _ schema.Store = (*DirStore)(nil)

// DirOption configures a DirStore.
type DirOption func(*DirStore)

// WithLogger sets the logger used by the watcher.
func WithLogger(logger *slog.Logger) DirOption {
	return func(s *DirStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChangeHook registers fn to be called with the id of every document the
// watcher invalidates.
func WithChangeHook(fn func(id string)) DirOption {
	return func(s *DirStore) {
		s.onChange = fn
	}
}

// NewDirStore wraps fsys.
func NewDirStore(fsys fs.FS, options ...DirOption) *DirStore {
	store := &DirStore{
		fsys:   fsys,
		logger: slog.Default(),
		cache:  make(map[string]schema.Document),
	}
	for _, opt := range options {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// Load implements schema.Store.
func (s *DirStore) Load(ctx context.Context, id string) (schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return schema.Document{}, err
	}
	if s.fsys == nil {
		return schema.Document{}, errors.New("schemastore: fs is nil")
	}

	s.mu.RLock()
	doc, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return doc.Clone(), nil
	}

	category, name := schema.SplitKey(id)
	if name == "" {
		return schema.Document{}, fmt.Errorf("%w: %q", schema.ErrNotFound, id)
	}
	for _, ext := range Extensions {
		file := path.Join(category, name+ext)
		data, err := fs.ReadFile(s.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return schema.Document{}, fmt.Errorf("schemastore: read %s: %w", file, err)
		}

		doc, err := schema.ParseDocument(id, data)
		if err != nil {
			return schema.Document{}, err
		}
		s.mu.Lock()
		s.cache[id] = doc
		s.mu.Unlock()
		return doc.Clone(), nil
	}
	return schema.Document{}, fmt.Errorf("%w: %s", schema.ErrNotFound, id)
}

// Invalidate drops the cached document for id.
func (s *DirStore) Invalidate(id string) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// InvalidateAll empties the cache.
func (s *DirStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]schema.Document)
	s.mu.Unlock()
}

// Cached reports whether id is currently cached.
func (s *DirStore) Cached(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[id]
	return ok
}

// IDs lists the documents present under the known categories, sorted.
func (s *DirStore) IDs() ([]string, error) {
	if s.fsys == nil {
		return nil, errors.New("schemastore: fs is nil")
	}
	seen := make(map[string]struct{})
	for _, category := range []string{schema.CategoryObject, schema.CategoryEmbedded} {
		entries, err := fs.ReadDir(s.fsys, category)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("schemastore: list %s: %w", category, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(path.Ext(entry.Name()))
			if !knownExtension(ext) {
				continue
			}
			seen[schema.Key(category, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func knownExtension(ext string) bool {
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}
