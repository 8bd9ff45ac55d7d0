// Package redis keeps records as JSON strings under <prefix><collection>:<id>.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
)

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type Store struct {
	rdb    *goredis.Client
	prefix string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb, prefix: cfg.KeyPrefix}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *Store) key(collection, id string) string {
	return s.prefix + collection + ":" + id
}

func (s *Store) Create(ctx context.Context, collection, id string, rec domain.Record) error {
	b, err := repo.Encode(rec)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, s.key(collection, id), b, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return repo.ErrAlreadyExists
	}
	return nil
}

func (s *Store) Read(ctx context.Context, collection, id string) (domain.Record, error) {
	b, err := s.rdb.Get(ctx, s.key(collection, id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return repo.Decode(b)
}

func (s *Store) Update(ctx context.Context, collection, id string, rec domain.Record) error {
	b, err := repo.Encode(rec)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetXX(ctx, s.key(collection, id), b, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setxx: %w", err)
	}
	if !ok {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	n, err := s.rdb.Del(ctx, s.key(collection, id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// List walks the keyspace with SCAN, so it never blocks the server the way
// KEYS would on a large collection.
func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	prefix := s.prefix + collection + ":"
	var keys []string
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return idsFromKeys(keys, prefix), nil
}

// idsFromKeys strips prefix and drops repeats; SCAN may return a key more
// than once during a rehash.
func idsFromKeys(keys []string, prefix string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		id := strings.TrimPrefix(k, prefix)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

var _ repo.RecordStore = (*Store)(nil)
