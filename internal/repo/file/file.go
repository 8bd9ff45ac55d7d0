// Package file stores each record as <dir>/<collection>/<id>.json.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
)

const ext = ".json"

type Store struct {
	dir string

	// serialises Update against Delete of the same file; Create relies on
	// O_EXCL and needs no lock
	mu sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(collection, id string) (string, error) {
	if err := safeName(collection); err != nil {
		return "", err
	}
	if err := safeName(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, collection, id+ext), nil
}

func safeName(n string) error {
	if n == "" || n == "." || n == ".." || strings.ContainsAny(n, `/\`) {
		return fmt.Errorf("invalid record name %q", n)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, collection, id string, rec domain.Record) error {
	p, err := s.path(collection, id)
	if err != nil {
		return err
	}
	b, err := repo.Encode(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return repo.ErrAlreadyExists
		}
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	return f.Close()
}

func (s *Store) Read(ctx context.Context, collection, id string) (domain.Record, error) {
	p, err := s.path(collection, id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	return repo.Decode(b)
}

// Update replaces an existing file atomically: the new document is written
// to a temp file in the same directory and renamed over the original.
func (s *Store) Update(ctx context.Context, collection, id string, rec domain.Record) error {
	p, err := s.path(collection, id)
	if err != nil {
		return err
	}
	b, err := repo.Encode(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repo.ErrNotFound
		}
		return fmt.Errorf("stat %s/%s: %w", collection, id, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	p, err := s.path(collection, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repo.ErrNotFound
		}
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	if err := safeName(collection); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ext))
	}
	sort.Strings(out)
	return out, nil
}

var _ repo.RecordStore = (*Store)(nil)
