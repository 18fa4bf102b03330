package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medportal"

// Collector exports a Snapshotter's counters as Prometheus metrics.
// Values are read at scrape time, so the recorder stays free of Prometheus types.
type Collector struct {
	source Snapshotter

	loginAttempts  *prometheus.Desc
	signupAttempts *prometheus.Desc
	authDuration   *prometheus.Desc
	rateLimited    *prometheus.Desc
	auditWrites    *prometheus.Desc
}

// NewCollector returns a Collector reading from source.
func NewCollector(source Snapshotter) *Collector {
	return &Collector{
		source: source,
		loginAttempts: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "login_attempts_total"),
			"Login attempts by outcome.",
			[]string{"outcome"}, nil,
		),
		signupAttempts: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "signup_attempts_total"),
			"Signup attempts by outcome.",
			[]string{"outcome"}, nil,
		),
		authDuration: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "auth_duration_seconds"),
			"Time spent handling login and signup requests.",
			nil, nil,
		),
		rateLimited: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "rate_limited_total"),
			"Auth requests rejected by the per-IP rate limiter.",
			nil, nil,
		),
		auditWrites: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "audit_writes_total"),
			"Audit trail inserts by status.",
			[]string{"status"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.loginAttempts
	ch <- c.signupAttempts
	ch <- c.authDuration
	ch <- c.rateLimited
	ch <- c.auditWrites
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()

	for outcome, n := range snap.LoginAttempts {
		ch <- prometheus.MustNewConstMetric(c.loginAttempts, prometheus.CounterValue, float64(n), outcome)
	}
	for outcome, n := range snap.SignupAttempts {
		ch <- prometheus.MustNewConstMetric(c.signupAttempts, prometheus.CounterValue, float64(n), outcome)
	}

	ch <- prometheus.MustNewConstSummary(c.authDuration,
		snap.AuthDurationCount, float64(snap.AuthDurationTotalNs)/1e9, nil)

	ch <- prometheus.MustNewConstMetric(c.rateLimited, prometheus.CounterValue, float64(snap.RateLimited))

	ch <- prometheus.MustNewConstMetric(c.auditWrites, prometheus.CounterValue, float64(snap.AuditWritesSucceeded), "success")
	ch <- prometheus.MustNewConstMetric(c.auditWrites, prometheus.CounterValue, float64(snap.AuditWritesFailed), "failed")
}
