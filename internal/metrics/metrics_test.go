package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheLookup("news", true)
	m.Fetch("news", nil)
	m.StoreError("set")
	m.SearchDispatched()
	m.SearchStale()
	m.SearchSuperseded()
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.CacheLookup("weather", true)
	m.CacheLookup("weather", false)
	m.CacheLookup("weather", false)
	m.Fetch("weather", nil)
	m.Fetch("weather", errors.New("boom"))
	m.SearchDispatched()
	m.SearchStale()

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("weather", "miss")); got != 2 {
		t.Errorf("expected 2 misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("weather", "error")); got != 1 {
		t.Errorf("expected 1 failed fetch, got %v", got)
	}
	if got := testutil.ToFloat64(m.searchStale); got != 1 {
		t.Errorf("expected 1 stale response, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SearchDispatched()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "newsdesk_search_dispatches_total 1") {
		t.Errorf("expected dispatch counter in output, got:\n%s", body)
	}
}
