package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Afrawles/actionfeed/internal/feed"
	"github.com/Afrawles/actionfeed/internal/poller"
)

func TestCollectorRecordsFetches(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	collector.ObserveFetch(nil, 20*time.Millisecond)
	collector.ObserveFetch(&feed.ResponseError{StatusCode: 500}, time.Millisecond)
	collector.ObserveFetch(&feed.TransportError{URL: "http://x", Err: errors.New("refused")}, time.Millisecond)
	collector.ObserveStale()
	collector.ObserveStatus(poller.Status{Connected: true, LastUpdated: time.Unix(1234, 0)})

	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics handler to return 200, got %d", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`actionfeed_poller_fetches_total{result="ok"} 1`,
		`actionfeed_poller_fetches_total{result="response"} 1`,
		`actionfeed_poller_fetches_total{result="transport"} 1`,
		`actionfeed_poller_fetch_duration_seconds_count 3`,
		`actionfeed_poller_stale_fetches_total 1`,
		`actionfeed_poller_connected 1`,
		`actionfeed_poller_last_updated_timestamp_seconds 1234`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metric %q not recorded, body=%q", want, body)
		}
	}
}

func TestCollectorDisconnected(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}
	collector.ObserveStatus(poller.Status{Connected: true})
	collector.ObserveStatus(poller.Status{Connected: false})

	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rr.Body.String(), "actionfeed_poller_connected 0") {
		t.Fatalf("connected gauge not reset, body=%q", rr.Body.String())
	}
}
