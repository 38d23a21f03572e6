package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the newsdesk counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	cacheLookups   *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	searchDispatch prometheus.Counter
	searchStale    prometheus.Counter
	searchDebounce prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_cache_lookups_total",
		Help: "Fetch cache lookups by key class and result",
	}, []string{"class", "result"})

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_fetches_total",
		Help: "Remote fetches by key class and outcome",
	}, []string{"class", "outcome"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_store_errors_total",
		Help: "Key-value store failures by operation",
	}, []string{"op"})

	searchDispatch := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsdesk_search_dispatches_total",
		Help: "Search queries dispatched to the remote API",
	})

	searchStale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsdesk_search_stale_responses_total",
		Help: "Search responses discarded because a newer query superseded them",
	})

	searchDebounce := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsdesk_search_superseded_inputs_total",
		Help: "Debounce timers that fired after a newer keystroke",
	})

	registry.MustRegister(cacheLookups, fetches, storeErrors, searchDispatch, searchStale, searchDebounce)

	return &Metrics{
		registry:       registry,
		cacheLookups:   cacheLookups,
		fetches:        fetches,
		storeErrors:    storeErrors,
		searchDispatch: searchDispatch,
		searchStale:    searchStale,
		searchDebounce: searchDebounce,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) CacheLookup(class string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(class, result).Inc()
}

func (m *Metrics) Fetch(class string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetches.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) SearchDispatched() {
	if m == nil {
		return
	}
	m.searchDispatch.Inc()
}

func (m *Metrics) SearchStale() {
	if m == nil {
		return
	}
	m.searchStale.Inc()
}

func (m *Metrics) SearchSuperseded() {
	if m == nil {
		return
	}
	m.searchDebounce.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a scrape endpoint on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
