// Package telemetry provides metrics collection and reporting
// for monitoring the reminders MCP server.
package telemetry

import (
	"net/http"
	"time"

	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "remindersmcp"

// Status label values
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusDegraded = "degraded"
)

// Recorder receives tool call and executor observations.
type Recorder interface {
	RecordToolCall(tool string, status string, duration time.Duration, err error)
	RecordExec(subcommand string, duration time.Duration, err error)
}

// MetricsCollector records tool and remindctl metrics as Prometheus
// collectors on its own registry. A nil *MetricsCollector is a valid no-op.
type MetricsCollector struct {
	registry *prometheus.Registry

	toolCalls    *prometheus.CounterVec
	toolErrors   *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	execDuration *prometheus.HistogramVec
}

// NewMetricsCollector creates a new MetricsCollector with a private registry.
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Total tool calls, partitioned by tool name and status.",
		}, []string{"tool", "status"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "errors_total",
			Help:      "Total tool call errors, partitioned by tool name and error type.",
		}, []string{"tool", "error_type"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "duration_seconds",
			Help:      "Tool call latency in seconds, including validation and remindctl.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		execDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exec",
			Name:      "duration_seconds",
			Help:      "remindctl run time in seconds, partitioned by subcommand and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"subcommand", "status"}),
	}

	m.registry.MustRegister(m.toolCalls, m.toolErrors, m.toolDuration, m.execDuration)
	return m
}

// RecordToolCall records one dispatcher call. status is one of the Status* constants.
func (m *MetricsCollector) RecordToolCall(tool string, status string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
	if err != nil {
		m.toolErrors.WithLabelValues(tool, errorLabel(err)).Inc()
	}
}

// RecordExec records one remindctl run.
func (m *MetricsCollector) RecordExec(subcommand string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.execDuration.WithLabelValues(subcommand, status).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *MetricsCollector) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func errorLabel(err error) string {
	if t := errortypes.TypeOf(err); t != "" {
		return string(t)
	}
	return "unknown"
}
