package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dmittakarin8/solflow/internal/health"
	"github.com/dmittakarin8/solflow/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "status.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	queue := storage.NewQueue(16)
	writer := storage.NewWriter(db, queue)
	checker := health.NewChecker(db, writer)

	return NewServer("127.0.0.1", 0, checker, queue, writer)
}

func TestHealthzReturnsOKWhenHealthy(t *testing.T) {
	s := newTestServer(t)
	s.checker.Start(httptest.NewRequest(http.MethodGet, "/", nil).Context())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := s.app.Test(req, 1000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if healthy, _ := body["healthy"].(bool); !healthy {
		t.Errorf("expected healthy=true, got %v", body["healthy"])
	}
}

func TestStatsReturnsQueueAndWriterCounters(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	resp, err := s.app.Test(req, 1000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["queue_depth"]; !ok {
		t.Error("expected queue_depth in response")
	}
	if _, ok := body["batches_committed"]; !ok {
		t.Error("expected batches_committed in response")
	}
}
