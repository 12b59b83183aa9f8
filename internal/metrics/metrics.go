package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the roster service.
// Every helper is safe to call on a nil registry.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec
	RateLimitedTotal     prometheus.Counter
	AuthDenialsTotal     *prometheus.CounterVec

	// Document store Metrics
	StoreCallsTotal   *prometheus.CounterVec
	StoreCallDuration *prometheus.HistogramVec
	FetchPages        *prometheus.HistogramVec
	FetchesTotal      *prometheus.CounterVec
	BreakerState      *prometheus.GaugeVec
	BreakerChanges    *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	MemberCacheSize  prometheus.Gauge

	// Business Metrics
	VodUpdatesTotal     *prometheus.CounterVec
	StaticUpdatesTotal  *prometheus.CounterVec
	WebhooksSentTotal   *prometheus.CounterVec
	SessionsIssuedTotal prometheus.Counter
}

// NewMetricsRegistry registers every metric with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	f := promauto.With(reg)
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vodtracker_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vodtracker_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method"},
		),
		RateLimitedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "vodtracker_http_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter",
			},
		),
		AuthDenialsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_auth_denials_total",
				Help: "Requests rejected for missing sessions or capabilities",
			},
			[]string{"reason"},
		),

		// Document store Metrics
		StoreCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_store_calls_total",
				Help: "Document store calls by backend, operation and result",
			},
			[]string{"backend", "operation", "result"},
		),
		StoreCallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vodtracker_store_call_duration_seconds",
				Help:    "Document store call latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"backend", "operation"},
		),
		FetchPages: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vodtracker_batched_fetch_pages",
				Help:    "Pages read by one batched collection fetch",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
			},
			[]string{"collection"},
		),
		FetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_batched_fetches_total",
				Help: "Batched collection fetches by collection and result",
			},
			[]string{"collection", "result"},
		),
		BreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vodtracker_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		BreakerChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_circuit_breaker_transitions_total",
				Help: "Circuit breaker state transitions",
			},
			[]string{"name", "from", "to"},
		),

		// Cache Metrics
		CacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),
		MemberCacheSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "vodtracker_member_cache_members",
				Help: "Members held by the member cache",
			},
		),

		// Business Metrics
		VodUpdatesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_vod_updates_total",
				Help: "VOD tracking writes by result",
			},
			[]string{"result"},
		),
		StaticUpdatesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_static_updates_total",
				Help: "Static group changes by preset and action",
			},
			[]string{"preset", "action"},
		),
		WebhooksSentTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vodtracker_webhooks_sent_total",
				Help: "Discord webhook deliveries by result",
			},
			[]string{"result"},
		),
		SessionsIssuedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "vodtracker_sessions_issued_total",
				Help: "Sessions issued after a successful Discord login",
			},
		),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveStoreCall matches store.CallObserver.
func (m *MetricsRegistry) ObserveStoreCall(backend, operation, _ string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreCallsTotal.WithLabelValues(backend, operation, result(err)).Inc()
	m.StoreCallDuration.WithLabelValues(backend, operation).Observe(d.Seconds())
}

// ObserveFetch matches store.FetchObserver.
func (m *MetricsRegistry) ObserveFetch(collection string, pages int, _ time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(collection, result(err)).Inc()
	if err == nil {
		m.FetchPages.WithLabelValues(collection).Observe(float64(pages))
	}
}

// BreakerTransition records a state change reported by gobreaker.
func (m *MetricsRegistry) BreakerTransition(name, from, to string) {
	if m == nil {
		return
	}
	m.BreakerChanges.WithLabelValues(name, from, to).Inc()
	m.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

func (m *MetricsRegistry) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

func (m *MetricsRegistry) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *MetricsRegistry) SetMemberCacheSize(n int) {
	if m == nil {
		return
	}
	m.MemberCacheSize.Set(float64(n))
}

func (m *MetricsRegistry) AuthDenied(reason string) {
	if m == nil {
		return
	}
	m.AuthDenialsTotal.WithLabelValues(reason).Inc()
}

func (m *MetricsRegistry) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

func (m *MetricsRegistry) VodUpdated(err error) {
	if m == nil {
		return
	}
	m.VodUpdatesTotal.WithLabelValues(result(err)).Inc()
}

func (m *MetricsRegistry) StaticChanged(preset, action string) {
	if m == nil {
		return
	}
	m.StaticUpdatesTotal.WithLabelValues(preset, action).Inc()
}

func (m *MetricsRegistry) WebhookSent(err error) {
	if m == nil {
		return
	}
	m.WebhooksSentTotal.WithLabelValues(result(err)).Inc()
}

func (m *MetricsRegistry) SessionIssued() {
	if m == nil {
		return
	}
	m.SessionsIssuedTotal.Inc()
}
