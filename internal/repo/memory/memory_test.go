package memory

import (
	"context"
	"testing"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo/repotest"
)

func TestMemoryStore_Conformance(t *testing.T) {
	repotest.Run(t, New(), domain.ChecksCollection)
}

func TestMemoryStore_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Create(ctx, "checks", "x", domain.Record{"state": "up"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Read(ctx, "checks", "x")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got["state"] = "down"

	again, _ := s.Read(ctx, "checks", "x")
	if again["state"] != "up" {
		t.Fatalf("store was mutated through a read copy: %v", again["state"])
	}
}

func TestMemoryStore_ListEmptyCollection(t *testing.T) {
	ids, err := New().List(context.Background(), "checks")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}
