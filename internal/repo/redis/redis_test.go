package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hamed0406/uptimeengine/internal/repo/repotest"
)

func TestRedisStore_Conformance(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis integration test")
	}
	ctx := context.Background()
	prefix := fmt.Sprintf("uptime-test-%d:", time.Now().UnixNano())
	s, err := New(ctx, Config{Addr: addr, KeyPrefix: prefix})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	repotest.Run(t, s, "checks")

	ids, _ := s.List(ctx, "checks")
	for _, id := range ids {
		_ = s.Delete(ctx, "checks", id)
	}
}

func TestKeyLayout(t *testing.T) {
	s := &Store{prefix: "up:"}
	if got := s.key("checks", "abc"); got != "up:checks:abc" {
		t.Fatalf("key = %q", got)
	}
}

func TestIDsFromKeys_DropsRepeatedScanKeys(t *testing.T) {
	keys := []string{"up:checks:b", "up:checks:a", "up:checks:b", "up:checks:c", "up:checks:a"}
	got := idsFromKeys(keys, "up:checks:")
	want := []string{"a", "b", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("idsFromKeys = %v, want %v", got, want)
	}
	if got := idsFromKeys(nil, "up:checks:"); len(got) != 0 {
		t.Fatalf("idsFromKeys(nil) = %v", got)
	}
}
