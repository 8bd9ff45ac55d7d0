package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/domain"
	apimw "github.com/hamed0406/uptimeengine/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeengine/internal/repo/memory"
	"github.com/hamed0406/uptimeengine/internal/scheduler"
)

// ---- test helpers ----

type fakeEngine struct {
	calls int
}

func (f *fakeEngine) RunCycle(ctx context.Context) scheduler.CycleReport {
	f.calls++
	return scheduler.CycleReport{Listed: 2, Probed: 1, Up: 1, Invalid: 1}
}

type brokenStore struct{ *memory.Store }

func (brokenStore) List(ctx context.Context, collection string) ([]string, error) {
	return nil, errors.New("connection refused")
}

const (
	goodID = "aaaaaaaaaaaaaaaaaaaa"
	badID  = "bbbbbbbbbbbbbbbbbbbb"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	good := domain.Record{
		"id": goodID, "ownerId": "5551234567", "protocol": "https", "url": "example.com",
		"method": "get", "successCodes": []any{200}, "timeoutSeconds": 3,
		"state": "up", "lastChecked": 1700000000000,
	}
	bad := domain.Record{"id": badID, "ownerId": "5551234567", "protocol": "ftp"}
	for id, rec := range map[string]domain.Record{goodID: good, badID: bad} {
		if err := s.Create(context.Background(), domain.ChecksCollection, id, rec); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func setupServer(t *testing.T, srv *Server) *httptest.Server {
	t.Helper()
	keys := apimw.Keys{Public: []string{"pub_test"}, Admin: []string{"adm_test"}}
	// very high rate limits to avoid flakiness in tests
	ts := httptest.NewServer(srv.Router(keys, nil, 10_000, 10_000, 10_000, 10_000))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, key string) (*http.Response, []byte) {
	t.Helper()
	req, _ := http.NewRequest(method, url, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

// ---- tests ----

func TestHealthAndReady(t *testing.T) {
	ts := setupServer(t, NewServer(zap.NewNop(), memory.New(), nil, prometheus.NewRegistry()))

	if resp, body := do(t, http.MethodGet, ts.URL+"/healthz", ""); resp.StatusCode != 200 || string(body) != "ok" {
		t.Fatalf("healthz: %d %q", resp.StatusCode, body)
	}
	if resp, _ := do(t, http.MethodGet, ts.URL+"/readyz", ""); resp.StatusCode != 200 {
		t.Fatalf("readyz: %d", resp.StatusCode)
	}
}

func TestReady_StoreDown(t *testing.T) {
	ts := setupServer(t, NewServer(zap.NewNop(), brokenStore{memory.New()}, nil, prometheus.NewRegistry()))
	if resp, _ := do(t, http.MethodGet, ts.URL+"/readyz", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz: want 503 got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	scheduler.NewMetrics(reg)
	ts := setupServer(t, NewServer(zap.NewNop(), memory.New(), nil, reg))

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	if resp.StatusCode != 200 || !strings.Contains(string(body), "uptime_cycles_total") {
		t.Fatalf("metrics: %d %s", resp.StatusCode, body)
	}
}

func TestListChecks(t *testing.T) {
	ts := setupServer(t, NewServer(zap.NewNop(), seededStore(t), nil, prometheus.NewRegistry()))

	if resp, _ := do(t, http.MethodGet, ts.URL+"/api/checks", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no key: want 401 got %d", resp.StatusCode)
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/api/checks", "pub_test")
	if resp.StatusCode != 200 {
		t.Fatalf("list: %d %s", resp.StatusCode, body)
	}
	var views []CheckView
	if err := json.Unmarshal(body, &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("want 2 views, got %d", len(views))
	}
	if !views[0].Valid || views[0].Check.State != domain.StateUp || views[0].Check.LastChecked != 1700000000000 {
		t.Fatalf("good check view wrong: %+v", views[0])
	}
	if views[1].Valid || len(views[1].Problems) < 2 {
		t.Fatalf("bad check should list its problems: %+v", views[1])
	}
}

func TestGetCheck(t *testing.T) {
	ts := setupServer(t, NewServer(zap.NewNop(), seededStore(t), nil, prometheus.NewRegistry()))

	resp, body := do(t, http.MethodGet, ts.URL+"/api/checks/"+goodID, "adm_test")
	if resp.StatusCode != 200 {
		t.Fatalf("get: %d %s", resp.StatusCode, body)
	}
	var v CheckView
	_ = json.Unmarshal(body, &v)
	if v.ID != goodID || v.Check == nil || v.Check.Target() != "https://example.com" {
		t.Fatalf("unexpected view: %+v", v)
	}

	if resp, _ := do(t, http.MethodGet, ts.URL+"/api/checks/missingmissingmissin", "pub_test"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing: want 404 got %d", resp.StatusCode)
	}
}

func TestForceCycle_AdminOnly(t *testing.T) {
	eng := &fakeEngine{}
	ts := setupServer(t, NewServer(zap.NewNop(), memory.New(), eng, prometheus.NewRegistry()))

	if resp, _ := do(t, http.MethodPost, ts.URL+"/api/admin/cycle", "pub_test"); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("public key: want 403 got %d", resp.StatusCode)
	}
	resp, body := do(t, http.MethodPost, ts.URL+"/api/admin/cycle", "adm_test")
	if resp.StatusCode != 200 {
		t.Fatalf("admin: %d %s", resp.StatusCode, body)
	}
	var got cycleResponse
	_ = json.Unmarshal(body, &got)
	if got.Listed != 2 || got.Up != 1 || got.Invalid != 1 || eng.calls != 1 {
		t.Fatalf("unexpected report %+v (calls=%d)", got, eng.calls)
	}
}

func TestForceCycle_NoEngine(t *testing.T) {
	ts := setupServer(t, NewServer(zap.NewNop(), memory.New(), nil, prometheus.NewRegistry()))
	if resp, _ := do(t, http.MethodPost, ts.URL+"/api/admin/cycle", "adm_test"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("want 503 got %d", resp.StatusCode)
	}
}

func TestRateLimitApplies(t *testing.T) {
	srv := NewServer(zap.NewNop(), memory.New(), nil, prometheus.NewRegistry())
	ts := httptest.NewServer(srv.Router(apimw.Keys{}, []string{"https://ops.example"}, 60, 1, 60, 1))
	defer ts.Close()

	if resp, _ := do(t, http.MethodGet, ts.URL+"/api/checks", ""); resp.StatusCode != 200 {
		t.Fatalf("first: %d", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodGet, ts.URL+"/api/checks", ""); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second: want 429 got %d", resp.StatusCode)
	}
}
