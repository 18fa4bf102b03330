// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth endpoint metrics; outcome is one of the model.AuthOutcome values.
	IncLoginAttempt(outcome string)
	IncSignupAttempt(outcome string)
	ObserveAuthDuration(duration time.Duration)

	// Rate limiter metrics
	IncRateLimited()

	// Audit trail metrics; status: "success" or "failed"
	IncAuditWrite(status string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
