// Package metrics provides Prometheus metrics for the archive server
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the archive server
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Index metrics
	ImportsTotal         *prometheus.CounterVec
	ImportDuration       prometheus.Histogram
	ConversationsIndexed prometheus.Gauge
	MessagesIndexed      prometheus.Gauge

	SearchQueriesTotal prometheus.Counter
	SearchResultsTotal prometheus.Counter
}

// New creates all metrics on a private registry, so several servers (and tests)
// can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "convo_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "convo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "convo_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
		ImportsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "convo_imports_total",
				Help: "Total number of export imports",
			},
			[]string{"status"},
		),
		ImportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "convo_import_duration_seconds",
			Help:    "Duration of export imports in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		ConversationsIndexed: f.NewGauge(prometheus.GaugeOpts{
			Name: "convo_conversations_indexed",
			Help: "Conversations currently in the index",
		}),
		MessagesIndexed: f.NewGauge(prometheus.GaugeOpts{
			Name: "convo_messages_indexed",
			Help: "Messages currently in the index",
		}),
		SearchQueriesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "convo_search_queries_total",
			Help: "Total number of search queries",
		}),
		SearchResultsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "convo_search_results_total",
			Help: "Total number of search results returned",
		}),
	}
}

// RecordRequest records a served request with its status code
func (m *Metrics) RecordRequest(route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordImport records one import run and, on success, the resulting index size
func (m *Metrics) RecordImport(err error, duration time.Duration, conversations, messages int) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ImportsTotal.WithLabelValues(status).Inc()
	m.ImportDuration.Observe(duration.Seconds())
	if err == nil {
		m.ConversationsIndexed.Set(float64(conversations))
		m.MessagesIndexed.Set(float64(messages))
	}
}

// RecordSearch records a search and the number of hits it returned
func (m *Metrics) RecordSearch(results int) {
	m.SearchQueriesTotal.Inc()
	m.SearchResultsTotal.Add(float64(results))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
