package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/repo/repotest"
)

func TestPostgresStore_Conformance(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := Migrate(ctx, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := New(ctx, Config{URL: dsn, QueryTimeout: 2 * time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	// unique collection per run so repeated runs never collide
	collection := fmt.Sprintf("checks_test_%d", time.Now().UTC().UnixNano())
	repotest.Run(t, store, collection)

	_, _ = store.pool.Exec(context.Background(), `DELETE FROM records WHERE collection = $1`, collection)
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("no migrations embedded")
	}
}
