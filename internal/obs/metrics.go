package obs

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
)

// Lookup outcomes recorded by IncLookups.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
	OutcomeRateLimit = "rate_limited"
)

// Metrics tracks application metrics using atomic counters.
type Metrics struct {
	requests  atomic.Int64
	cacheHits atomic.Int64

	mu             sync.Mutex
	providerErrors map[string]int64
	lookups        map[string]int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		providerErrors: make(map[string]int64),
		lookups:        make(map[string]int64),
		logger:         logger,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requests.Add(1)
}

// IncCacheHits increments the cache hits counter.
func (m *Metrics) IncCacheHits() {
	m.cacheHits.Add(1)
}

// IncProviderErrors increments the error counter of one upstream provider.
func (m *Metrics) IncProviderErrors(provider string) {
	m.mu.Lock()
	m.providerErrors[provider]++
	m.mu.Unlock()
}

// IncLookups increments the counter for a finished lookup with the given outcome.
func (m *Metrics) IncLookups(outcome string) {
	m.mu.Lock()
	m.lookups[outcome]++
	m.mu.Unlock()
}

// Snapshot returns current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := MetricsSnapshot{
		Requests:       m.requests.Load(),
		CacheHits:      m.cacheHits.Load(),
		ProviderErrors: make(map[string]int64, len(m.providerErrors)),
		Lookups:        make(map[string]int64, len(m.lookups)),
	}
	for k, v := range m.providerErrors {
		s.ProviderErrors[k] = v
	}
	for k, v := range m.lookups {
		s.Lookups[k] = v
	}
	return s
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Requests       int64
	CacheHits      int64
	ProviderErrors map[string]int64
	Lookups        map[string]int64
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", "error", err)
		}
	}
}

// MetricsHandler returns a handler for /metrics requests in Prometheus format.
func (m *Metrics) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := m.Snapshot()

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)

		if err := snapshot.WritePrometheus(w); err != nil {
			m.logger.Error("failed to write metrics", "error", err)
		}
	}
}

// WritePrometheus writes the snapshot in the Prometheus text exposition format.
func (s MetricsSnapshot) WritePrometheus(w io.Writer) error {
	if err := writeCounter(w, "requests_total", "Total number of requests", "", map[string]int64{"": s.Requests}); err != nil {
		return err
	}
	if err := writeCounter(w, "cache_hits_total", "Total number of cache hits", "", map[string]int64{"": s.CacheHits}); err != nil {
		return err
	}
	if err := writeCounter(w, "provider_errors_total", "Total number of provider errors", "provider", s.ProviderErrors); err != nil {
		return err
	}
	return writeCounter(w, "lookups_total", "Total number of property lookups by outcome", "outcome", s.Lookups)
}

func writeCounter(w io.Writer, name, help, label string, values map[string]int64) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", name, help, name); err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var err error
		if label == "" {
			_, err = fmt.Fprintf(w, "%s %d\n", name, values[k])
		} else {
			_, err = fmt.Fprintf(w, "%s{%s=%q} %d\n", name, label, k, values[k])
		}
		if err != nil {
			return err
		}
	}
	return nil
}
