package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperifyio/wordfreq/internal/pipeline"
)

// Render outcomes recorded in wordfreq_render_total.
const (
	resultOK          = "ok"
	resultNoData      = "no_data"
	resultUnsupported = "unsupported"
	resultError       = "error"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	renderTotal   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordfreq_fetch_total",
			Help: "Page fetches by result (ok or the fetch error kind).",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wordfreq_fetch_duration_seconds",
			Help:    "Time spent fetching and cleaning a page.",
			Buckets: prometheus.DefBuckets,
		}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordfreq_render_total",
			Help: "Chart renders by backend, chart type and result.",
		}, []string{"backend", "chart", "result"}),
	}
	m.registry.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.renderTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch matches the pipeline.Analyzer Observe hook.
func (m *Metrics) ObserveFetch(r pipeline.Result, elapsed time.Duration) {
	result := resultOK
	if r.Err != nil {
		result = r.Err.Kind.String()
	}
	m.fetchTotal.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeRender(backend, chart, result string) {
	m.renderTotal.WithLabelValues(backend, chart, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
