// Package telemetry records Prometheus metrics for tool invocations and upstream
// Datadog requests, and serves them over HTTP.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus collectors for the billing server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	ServerStartTime prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datadog_billing_tool_calls_total",
			Help: "Total number of tool invocations by outcome.",
		}, []string{"tool", "outcome"}),

		ToolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datadog_billing_tool_call_duration_seconds",
			Help:    "Tool invocation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),

		UpstreamRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datadog_billing_upstream_requests_total",
			Help: "Total number of Datadog API requests by endpoint and status code.",
		}, []string{"endpoint", "status_code"}),

		UpstreamRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datadog_billing_upstream_request_duration_seconds",
			Help:    "Datadog API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "datadog_billing_server_start_time_seconds",
			Help: "Unix time the server started.",
		}),
	}

	reg.MustRegister(
		m.ToolCallsTotal,
		m.ToolCallDuration,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDuration,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveToolCall records one tool invocation. outcome is "ok" or an error kind.
func (m *Metrics) ObserveToolCall(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveUpstream records one Datadog API request. statusCode is 0 when no
// response was received.
func (m *Metrics) ObserveUpstream(endpoint string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
