package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
)

// Store keeps encoded documents in memory. Records are copied on the way in
// and out, so callers never share a map with the store.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func New() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

func (m *Store) Create(ctx context.Context, collection, id string, rec domain.Record) error {
	b, err := repo.Encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collections[collection]
	if c == nil {
		c = make(map[string][]byte)
		m.collections[collection] = c
	}
	if _, ok := c[id]; ok {
		return repo.ErrAlreadyExists
	}
	c[id] = b
	return nil
}

func (m *Store) Read(ctx context.Context, collection, id string) (domain.Record, error) {
	m.mu.RLock()
	b, ok := m.collections[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, repo.ErrNotFound
	}
	return repo.Decode(b)
}

func (m *Store) Update(ctx context.Context, collection, id string, rec domain.Record) error {
	b, err := repo.Encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collections[collection]
	if _, ok := c[id]; !ok {
		return repo.ErrNotFound
	}
	c[id] = b
	return nil
}

func (m *Store) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collections[collection]
	if _, ok := c[id]; !ok {
		return repo.ErrNotFound
	}
	delete(c, id)
	return nil
}

func (m *Store) List(ctx context.Context, collection string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.collections[collection]))
	for id := range m.collections[collection] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

var _ repo.RecordStore = (*Store)(nil)
