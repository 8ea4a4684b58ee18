package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client-side Prometheus metrics. All methods are safe to call
// on a nil *Metrics so components can treat metrics as optional.
type Metrics struct {
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	TokenRefreshes     *prometheus.CounterVec
	SessionTransitions *prometheus.CounterVec
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	CacheInvalidations *prometheus.CounterVec
	CacheSuperseded    *prometheus.CounterVec
}

// New creates and registers all client metrics on reg. A nil reg registers on the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_api_requests_total",
			Help: "Total number of backend requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		APIRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "addressbook_api_request_duration_seconds",
			Help:    "Latency of backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_token_refreshes_total",
			Help: "Total number of access token refresh attempts by result",
		}, []string{"result"}),
		SessionTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_session_transitions_total",
			Help: "Total number of session state transitions by target state",
		}, []string{"state"}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_cache_hits_total",
			Help: "Total number of query cache hits by resource",
		}, []string{"resource"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_cache_misses_total",
			Help: "Total number of query cache misses by resource",
		}, []string{"resource"}),
		CacheInvalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_cache_invalidations_total",
			Help: "Total number of query cache invalidations by resource",
		}, []string{"resource"}),
		CacheSuperseded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_cache_superseded_total",
			Help: "Reads that completed after their resource was invalidated and were not stored",
		}, []string{"resource"}),
	}
}

// ObserveRequest records one backend request.
func (m *Metrics) ObserveRequest(endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(endpoint, outcome).Inc()
	m.APIRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// IncrementTokenRefresh records a refresh attempt ("success" or "failure").
func (m *Metrics) IncrementTokenRefresh(result string) {
	if m == nil {
		return
	}
	m.TokenRefreshes.WithLabelValues(result).Inc()
}

// IncrementSessionTransition records entry into a session state.
func (m *Metrics) IncrementSessionTransition(state string) {
	if m == nil {
		return
	}
	m.SessionTransitions.WithLabelValues(state).Inc()
}

func (m *Metrics) RecordCacheHit(resource string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(resource).Inc()
}

func (m *Metrics) RecordCacheMiss(resource string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(resource).Inc()
}

func (m *Metrics) RecordCacheInvalidation(resource string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.WithLabelValues(resource).Inc()
}

func (m *Metrics) RecordCacheSuperseded(resource string) {
	if m == nil {
		return
	}
	m.CacheSuperseded.WithLabelValues(resource).Inc()
}
