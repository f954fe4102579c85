package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Afrawles/actionfeed/internal/config"
	"github.com/Afrawles/actionfeed/internal/view"
)

const actionsJSON = `[{"id":"1","type":"push","message":"deployed v2","timestamp":"2024-01-01T00:00:00Z"}]`

func newFeedServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestApp(t *testing.T, baseURL string, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Feed.BaseURL = baseURL
	cfg.Output.Directory = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(cfg, io.Discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Poll.Interval = 0
	if _, err := New(cfg, io.Discard); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestFetchOnceSuccess(t *testing.T) {
	srv, _ := newFeedServer(t, http.StatusOK, actionsJSON)
	a := newTestApp(t, srv.URL, nil)

	var out bytes.Buffer
	term := view.NewTerminal(&out, view.TerminalOptions{})
	st, err := a.FetchOnce(context.Background(), term)
	if err != nil {
		t.Fatalf("FetchOnce: %v", err)
	}
	if !st.Connected || st.LastUpdated.IsZero() {
		t.Fatalf("unexpected status: %+v", st)
	}

	_ = term.Flush()
	if !strings.Contains(out.String(), "deployed v2") || !strings.Contains(out.String(), "↑") {
		t.Fatalf("terminal missing entry:\n%s", out.String())
	}
}

func TestFetchOnceServerError(t *testing.T) {
	srv, _ := newFeedServer(t, http.StatusInternalServerError, `{"error":"Failed to fetch actions"}`)
	a := newTestApp(t, srv.URL, nil)

	st, err := a.FetchOnce(context.Background(), view.NewTerminal(io.Discard, view.TerminalOptions{}))
	if err != nil {
		t.Fatalf("FetchOnce: %v", err)
	}
	if st.Connected {
		t.Fatal("expected disconnected after HTTP 500")
	}
}

func TestFetchOnceWritesHTMLPage(t *testing.T) {
	srv, _ := newFeedServer(t, http.StatusOK, actionsJSON)
	htmlPath := filepath.Join(t.TempDir(), "index.html")
	a := newTestApp(t, srv.URL, func(c *config.Config) { c.Output.HTMLPath = htmlPath })

	if _, err := a.FetchOnce(context.Background(), view.NewTerminal(io.Discard, view.TerminalOptions{})); err != nil {
		t.Fatalf("FetchOnce: %v", err)
	}

	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("page not written: %v", err)
	}
	if !strings.Contains(string(data), "deployed v2") || !strings.Contains(string(data), ">Connected<") {
		t.Fatal("page missing entry or status")
	}
}

func TestHandlerServesPageAndMetrics(t *testing.T) {
	srv, _ := newFeedServer(t, http.StatusOK, actionsJSON)
	a := newTestApp(t, srv.URL, func(c *config.Config) { c.Server.Listen = "127.0.0.1:0" })

	if _, err := a.FetchOnce(context.Background(), view.NewTerminal(io.Discard, view.TerminalOptions{})); err != nil {
		t.Fatalf("FetchOnce: %v", err)
	}

	h := a.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "deployed v2") {
		t.Fatalf("page: code=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `actionfeed_poller_fetches_total{result="ok"} 1`) {
		t.Fatalf("metrics missing fetch count: %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz code=%d", rr.Code)
	}
}

func TestWatchManualRefresh(t *testing.T) {
	srv, hits := newFeedServer(t, http.StatusOK, actionsJSON)
	a := newTestApp(t, srv.URL, func(c *config.Config) {
		c.Poll.Interval = time.Hour
		c.Refresh.MinInterval = 0
	})

	ctx, cancel := context.WithCancel(context.Background())
	refresh := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, view.NewTerminal(io.Discard, view.TerminalOptions{}), refresh) }()

	waitHits(t, hits, 1)
	refresh <- struct{}{}
	waitHits(t, hits, 2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchThrottlesRefresh(t *testing.T) {
	srv, hits := newFeedServer(t, http.StatusOK, actionsJSON)
	a := newTestApp(t, srv.URL, func(c *config.Config) {
		c.Poll.Interval = time.Hour
		c.Refresh.MinInterval = time.Hour
		c.Refresh.Burst = 1
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refresh := make(chan struct{})
	go func() { _ = a.Watch(ctx, view.NewTerminal(io.Discard, view.TerminalOptions{}), refresh) }()

	waitHits(t, hits, 1)
	for i := 0; i < 3; i++ {
		refresh <- struct{}{}
	}
	waitHits(t, hits, 2)

	time.Sleep(100 * time.Millisecond)
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 requests with throttling, got %d", got)
	}
}

func TestSnapshotAndExport(t *testing.T) {
	srv, _ := newFeedServer(t, http.StatusOK, actionsJSON)
	a := newTestApp(t, srv.URL, nil)

	snap, err := a.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Entries) != 1 || snap.Source != srv.URL+"/api/actions" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	paths, err := a.Export(snap, []string{"json", "csv", "xlsx"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing export %s: %v", p, err)
		}
	}
}

func TestSnapshotReturnsFetchError(t *testing.T) {
	srv, _ := newFeedServer(t, http.StatusBadGateway, "upstream down")
	a := newTestApp(t, srv.URL, nil)

	if _, err := a.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error from failed fetch")
	}
}

func waitHits(t *testing.T, hits *atomic.Int32, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d requests, got %d", n, hits.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
