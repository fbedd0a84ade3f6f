package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of one process. All methods are safe on a nil receiver
// so components can run without metrics in tests and tools.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	DirectoryPages   prometheus.Counter
	DirectoryVenues  prometheus.Gauge
	SessionChanges   *prometheus.CounterVec
	Mutations        *prometheus.CounterVec
}

// New registers the holidaze collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the Noroff API by operation and status.",
		}, []string{"operation", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "holidaze",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of Noroff API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DirectoryPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "directory_pages_fetched_total",
			Help:      "Venue listing pages fetched by the directory.",
		}),
		DirectoryVenues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "holidaze",
			Name:      "directory_venues",
			Help:      "Distinct venues held after the last full directory fetch.",
		}),
		SessionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "session_changes_total",
			Help:      "Auth state transitions by resulting state.",
		}, []string{"state"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "mutations_total",
			Help:      "Submitted mutations by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.DirectoryPages,
		m.DirectoryVenues,
		m.SessionChanges,
		m.Mutations,
	)
	return m
}

// Handler exposes the registry for /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream records one API call; status 0 means transport failure
func (m *Metrics) ObserveUpstream(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamRequests.WithLabelValues(operation, label).Inc()
	m.UpstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) PageFetched() {
	if m == nil {
		return
	}
	m.DirectoryPages.Inc()
}

func (m *Metrics) DirectorySize(n int) {
	if m == nil {
		return
	}
	m.DirectoryVenues.Set(float64(n))
}

func (m *Metrics) SessionChanged(authenticated bool) {
	if m == nil {
		return
	}
	state := "anonymous"
	if authenticated {
		state = "authenticated"
	}
	m.SessionChanges.WithLabelValues(state).Inc()
}

// Mutation records the outcome ("ok" or "failed") of a submitted change
func (m *Metrics) Mutation(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Mutations.WithLabelValues(kind, outcome).Inc()
}
