package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncLoginAttempt(outcome string)             {}
func (n *NoopRecorder) IncSignupAttempt(outcome string)            {}
func (n *NoopRecorder) ObserveAuthDuration(duration time.Duration) {}
func (n *NoopRecorder) IncRateLimited()                            {}
func (n *NoopRecorder) IncAuditWrite(status string)                {}
