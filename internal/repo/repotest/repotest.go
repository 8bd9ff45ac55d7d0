// Package repotest holds the behaviour every repo.RecordStore must show.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
)

// Run exercises s. collection should be unique per run for shared backends.
func Run(t *testing.T, s repo.RecordStore, collection string) {
	t.Helper()
	ctx := context.Background()

	t.Run("create_read", func(t *testing.T) {
		rec := domain.Record{"id": "a", "url": "example.com", "successCodes": []any{200}}
		require.NoError(t, s.Create(ctx, collection, "a", rec))

		got, err := s.Read(ctx, collection, "a")
		require.NoError(t, err)
		assert.Equal(t, "example.com", got["url"])
		assert.Equal(t, []any{float64(200)}, got["successCodes"])
	})

	t.Run("create_existing_fails", func(t *testing.T) {
		err := s.Create(ctx, collection, "a", domain.Record{"id": "a", "url": "other"})
		assert.ErrorIs(t, err, repo.ErrAlreadyExists)

		got, err := s.Read(ctx, collection, "a")
		require.NoError(t, err)
		assert.Equal(t, "example.com", got["url"], "existing record must not be overwritten")
	})

	t.Run("read_missing", func(t *testing.T) {
		_, err := s.Read(ctx, collection, "missing")
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, s.Update(ctx, collection, "a", domain.Record{"id": "a", "url": "example.com", "state": "up"}))
		got, err := s.Read(ctx, collection, "a")
		require.NoError(t, err)
		assert.Equal(t, "up", got["state"])
	})

	t.Run("update_missing_fails", func(t *testing.T) {
		err := s.Update(ctx, collection, "ghost", domain.Record{"id": "ghost"})
		assert.ErrorIs(t, err, repo.ErrNotFound)
		_, err = s.Read(ctx, collection, "ghost")
		assert.ErrorIs(t, err, repo.ErrNotFound, "update must not create")
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, collection, "b", domain.Record{"id": "b"}))
		ids, err := s.List(ctx, collection)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, collection, "b"))
		assert.ErrorIs(t, s.Delete(ctx, collection, "b"), repo.ErrNotFound)
		ids, err := s.List(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids)
	})

	t.Run("concurrent_create_single_winner", func(t *testing.T) {
		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := s.Create(ctx, collection, "race", domain.Record{"writer": fmt.Sprint(i)})
				if err == nil {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("concurrent_updates_distinct_keys", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			id := fmt.Sprintf("k%d", i)
			require.NoError(t, s.Create(ctx, collection, id, domain.Record{"n": 0}))
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.Update(ctx, collection, id, domain.Record{"n": 1}))
			}()
		}
		wg.Wait()
		for i := 0; i < 8; i++ {
			got, err := s.Read(ctx, collection, fmt.Sprintf("k%d", i))
			require.NoError(t, err)
			assert.Equal(t, float64(1), got["n"])
		}
	})
}
