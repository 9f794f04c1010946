// Package metrics provides Prometheus metrics for the OpenSprinkler MCP server.
// It tracks tool calls, controller request latencies, result codes and error kinds.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "opensprinkler_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// ResourceReads counts MCP resource reads
	ResourceReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "resource_reads_total",
		Help:      "MCP resource reads by URI and status",
	}, []string{"uri", "status"})

	// ControllerAPILatency measures controller call latency by path
	ControllerAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "controller_api_latency_seconds",
		Help:      "Controller API call latency by path",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})

	// ControllerAPIRequestsTotal counts controller requests
	ControllerAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "controller_api_requests_total",
		Help:      "Total controller API requests by path and status",
	}, []string{"path", "status"})

	// ControllerAPIErrors counts controller request failures by error kind
	ControllerAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "controller_api_errors_total",
		Help:      "Controller API errors by path and error kind",
	}, []string{"path", "kind"})

	// ControllerResultCodes counts result codes reported by command endpoints
	ControllerResultCodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "controller_result_codes_total",
		Help:      "Result codes returned by controller command endpoints",
	}, []string{"path", "code"})

	// ResponseSize tracks controller response body sizes
	ResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "controller_response_size_bytes",
		Help:      "Controller response size distribution in bytes",
		Buckets:   []float64{16, 128, 1024, 4096, 16384, 65536, 262144, 1048576},
	}, []string{"path"})

	// RateLimitRejections counts HTTP requests rejected due to rate limiting
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Requests rejected due to rate limiting",
	})

	// ControllerSlotWaits counts controller requests that found every
	// request slot taken and had to queue
	ControllerSlotWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "controller_slot_waits_total",
		Help:      "Controller requests that waited for a free request slot",
	})

	// AuthFailures counts authentication failures reported by the controller
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication failure count by reason",
	}, []string{"reason"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts HTTP transport requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Result codes the controller reports in {"result": n} bodies. These mirror
// opensprinkler.ResultUnauthorized and opensprinkler.ResultMismatch; that
// package imports metrics, so importing it here would be a cycle.
const (
	resultUnauthorized = 2
	resultMismatch     = 3
)

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records a controller API call. kind is empty on success.
func RecordAPICall(path string, duration float64, success bool, kind string) {
	ControllerAPIRequestsTotal.WithLabelValues(path, status(success)).Inc()
	ControllerAPILatency.WithLabelValues(path).Observe(duration)
	if kind != "" {
		ControllerAPIErrors.WithLabelValues(path, kind).Inc()
	}
}

// RecordResultCode records the result code of a command endpoint.
// Unauthorized and mismatch codes also count as auth failures.
func RecordResultCode(path string, code int) {
	ControllerResultCodes.WithLabelValues(path, strconv.Itoa(code)).Inc()
	switch code {
	case resultUnauthorized:
		AuthFailures.WithLabelValues("unauthorized").Inc()
	case resultMismatch:
		AuthFailures.WithLabelValues("mismatch").Inc()
	}
}

// RecordResourceRead records an MCP resource read
func RecordResourceRead(uri string, success bool) {
	ResourceReads.WithLabelValues(uri, status(success)).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
