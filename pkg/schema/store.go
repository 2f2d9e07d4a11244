package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Store locates schema documents by composite id (see Key). Implementations
// return errors wrapping ErrNotFound or ErrMalformed where applicable.
type Store interface {
	Load(ctx context.Context, id string) (Document, error)
}

// StoreFunc adapts a plain function into a Store.
type StoreFunc func(ctx context.Context, id string) (Document, error)

// Load implements Store.
func (fn StoreFunc) Load(ctx context.Context, id string) (Document, error) {
	return fn(ctx, id)
}

// MemoryStore is an in-memory Store, safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore seeds a store with the provided documents keyed by their id.
func NewMemoryStore(docs ...Document) *MemoryStore {
	store := &MemoryStore{docs: make(map[string]Document, len(docs))}
	for _, doc := range docs {
		store.docs[doc.ID] = doc.Clone()
	}
	return store
}

// Put registers or replaces a document.
func (s *MemoryStore) Put(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = make(map[string]Document)
	}
	s.docs[doc.ID] = doc.Clone()
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc.Clone(), nil
}

// IDs returns the registered document ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Chain consults stores in order and returns the first document found. A
// store reporting ErrNotFound passes the lookup on; any other failure stops
// the chain.
type Chain []Store

// Load implements Store.
func (c Chain) Load(ctx context.Context, id string) (Document, error) {
	for _, store := range c {
		if store == nil {
			continue
		}
		doc, err := store.Load(ctx, id)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Document{}, err
		}
	}
	return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
