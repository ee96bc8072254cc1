package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	dmAttempts      *prometheus.CounterVec
	webhookPosts    *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
}

// NewMetrics registers collectors with reg. A nil reg uses a private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests labeled by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "helpdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP errors labeled by domain error code",
		}, []string{"path", "method", "code"}),
		dmAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "gateway",
			Name:      "dm_attempts_total",
			Help:      "Direct message attempts labeled by event type and result",
		}, []string{"event_type", "result"}),
		webhookPosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "gateway",
			Name:      "webhook_posts_total",
			Help:      "Category webhook posts labeled by category and result",
		}, []string{"category", "result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background job executions labeled by job and result",
		}, []string{"job", "result"}),
	}
	reg.MustRegister(m.requestCount, m.requestDuration, m.errorCount, m.dmAttempts, m.webhookPosts, m.jobRuns)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordDMAttempt counts one direct-message attempt.
func (m *Metrics) RecordDMAttempt(eventType, result string) {
	if m == nil {
		return
	}
	m.dmAttempts.WithLabelValues(eventType, result).Inc()
}

// RecordWebhook counts one category webhook post.
func (m *Metrics) RecordWebhook(category string, success bool) {
	if m == nil {
		return
	}
	m.webhookPosts.WithLabelValues(category, resultLabel(success)).Inc()
}

// RecordJob counts one background job run.
func (m *Metrics) RecordJob(job string, success bool) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
