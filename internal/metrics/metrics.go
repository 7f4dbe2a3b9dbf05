// Package metrics exposes Prometheus instruments for graph mutations, bulk
// loads, analytics runs and connected clients.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	labelOperation = "operation"
	labelOutcome   = "outcome"
	labelKind      = "kind"
	labelMetric    = "metric"
	labelTransport = "transport"

	// OutcomeOK labels a mutation that succeeded
	OutcomeOK = "ok"
)

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry          *prometheus.Registry
	mutations         *prometheus.CounterVec
	loadRejections    *prometheus.CounterVec
	analyticsDuration *prometheus.HistogramVec
	nodes             prometheus.Gauge
	edges             prometheus.Gauge
	clients           *prometheus.GaugeVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelgraph_mutations_total",
			Help: "Graph mutations by operation and outcome",
		}, []string{labelOperation, labelOutcome}),
		loadRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelgraph_load_rejections_total",
			Help: "Nodes and edges refused by bulk load",
		}, []string{labelKind}),
		analyticsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reelgraph_analytics_duration_seconds",
			Help:    "Time spent computing each analytics metric",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{labelMetric}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reelgraph_nodes",
			Help: "Nodes currently in the graph",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reelgraph_edges",
			Help: "Edges currently in the graph",
		}),
		clients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reelgraph_connected_clients",
			Help: "Connected presentation clients by transport",
		}, []string{labelTransport}),
	}

	m.registry.MustRegister(
		m.mutations,
		m.loadRejections,
		m.analyticsDuration,
		m.nodes,
		m.edges,
		m.clients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveMutation counts one mutation attempt
func (m *Metrics) ObserveMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

// ObserveRejections counts bulk-load rejections by kind ("node" or "edge")
func (m *Metrics) ObserveRejections(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.loadRejections.WithLabelValues(kind).Add(float64(n))
}

// ObserveAnalytics records how long a metric took
func (m *Metrics) ObserveAnalytics(metric string, d time.Duration) {
	if m == nil {
		return
	}
	m.analyticsDuration.WithLabelValues(metric).Observe(d.Seconds())
}

// SetGraphSize updates the node and edge gauges
func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(nodes))
	m.edges.Set(float64(edges))
}

// ClientConnected increments the client gauge for a transport
func (m *Metrics) ClientConnected(transport string) {
	if m == nil {
		return
	}
	m.clients.WithLabelValues(transport).Inc()
}

// ClientDisconnected decrements the client gauge for a transport
func (m *Metrics) ClientDisconnected(transport string) {
	if m == nil {
		return
	}
	m.clients.WithLabelValues(transport).Dec()
}
