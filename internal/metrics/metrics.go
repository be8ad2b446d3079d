package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AuditEntriesTotal counts chained audit entries by category and severity.
	AuditEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit log entries written",
		},
		[]string{"category", "severity"},
	)

	// AuditWriteFailuresTotal counts swallowed audit write failures by stage
	// (enqueue, persist, wait). This is the observable half of the
	// never-fail-the-caller contract.
	AuditWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Total number of audit writes that failed and were swallowed",
		},
		[]string{"stage"},
	)

	// AlertDispatchTotal counts operator alert dispatches by outcome (delivered, failed).
	AlertDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_alert_dispatch_total",
			Help: "Total number of operator alert dispatches by outcome",
		},
		[]string{"outcome"},
	)

	// VerificationRunsTotal counts integrity verification runs by result (intact, tampered).
	VerificationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_verification_runs_total",
			Help: "Total number of chain verification runs by result",
		},
		[]string{"result"},
	)

	// VerificationFindingsTotal counts tampered entries found across all runs.
	VerificationFindingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_verification_findings_total",
			Help: "Total number of invalid or chain-broken entries found",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			AuditEntriesTotal, AuditWriteFailuresTotal,
			AlertDispatchTotal,
			VerificationRunsTotal, VerificationFindingsTotal,
		)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /v1/alerts/123 -> /v1/alerts/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncAuditEntry counts one committed audit entry.
func IncAuditEntry(category, severity string) {
	AuditEntriesTotal.WithLabelValues(category, severity).Inc()
}

// IncAuditWriteFailure counts one swallowed write failure for the given stage.
func IncAuditWriteFailure(stage string) {
	AuditWriteFailuresTotal.WithLabelValues(stage).Inc()
}

// IncAlertDispatch counts one alert dispatch outcome (delivered, failed).
func IncAlertDispatch(outcome string) {
	AlertDispatchTotal.WithLabelValues(outcome).Inc()
}

// IncVerificationRun counts one verification run by result (intact, tampered).
func IncVerificationRun(result string) {
	VerificationRunsTotal.WithLabelValues(result).Inc()
}

// AddVerificationFindings adds the findings of one run to the total.
func AddVerificationFindings(n int) {
	VerificationFindingsTotal.Add(float64(n))
}
