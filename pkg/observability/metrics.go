// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the chat stream orchestrator.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstream_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatstream_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// StreamingConnections tracks the number of active SSE connections.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatstream_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)

	// BackendRequestsTotal counts requests sent to the generation backend.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstream_backend_requests_total",
			Help: "Generation backend requests",
		},
		[]string{"backend", "model", "status"},
	)

	// BackendLatency records generation backend latency in seconds.
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatstream_backend_latency_seconds",
			Help:    "Generation backend latency",
			Buckets: LLMBuckets,
		},
		[]string{"backend", "model"},
	)

	// SearchQueriesTotal counts search provider queries by outcome.
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstream_search_queries_total",
			Help: "Search provider queries",
		},
		[]string{"backend", "status"},
	)

	// SearchResultsReturned records the number of results per search.
	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatstream_search_results_returned",
			Help:    "Search results returned",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
		[]string{"backend"},
	)

	// ToolExecutionsTotal counts tool executions by name and outcome.
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstream_tool_executions_total",
			Help: "Tool executions",
		},
		[]string{"tool_name", "status"},
	)

	// QuotaRejectedTotal counts requests rejected by the daily quota.
	QuotaRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstream_quota_rejected_total",
			Help: "Quota rejections",
		},
		[]string{"tier"},
	)

	// StreamResumesTotal counts resume attempts by outcome
	// (replayed, synthesized, empty).
	StreamResumesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstream_stream_resumes_total",
			Help: "Stream resume attempts",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		BackendRequestsTotal,
		BackendLatency,
		SearchQueriesTotal,
		SearchResultsReturned,
		ToolExecutionsTotal,
		QuotaRejectedTotal,
		StreamResumesTotal,
	)
}
