package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginAttempts        map[string]uint64
	SignupAttempts       map[string]uint64
	AuthDurationCount    uint64
	AuthDurationTotalNs  int64
	RateLimited          uint64
	AuditWritesSucceeded uint64
	AuditWritesFailed    uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint.
type InMemoryRecorder struct {
	mu             sync.Mutex
	loginAttempts  map[string]uint64
	signupAttempts map[string]uint64

	authDurationCount    uint64
	authDurationTotalNs  int64
	rateLimited          uint64
	auditWritesSucceeded uint64
	auditWritesFailed    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		loginAttempts:  make(map[string]uint64),
		signupAttempts: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	login := make(map[string]uint64, len(m.loginAttempts))
	for k, v := range m.loginAttempts {
		login[k] = v
	}
	signup := make(map[string]uint64, len(m.signupAttempts))
	for k, v := range m.signupAttempts {
		signup[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		LoginAttempts:        login,
		SignupAttempts:       signup,
		AuthDurationCount:    atomic.LoadUint64(&m.authDurationCount),
		AuthDurationTotalNs:  atomic.LoadInt64(&m.authDurationTotalNs),
		RateLimited:          atomic.LoadUint64(&m.rateLimited),
		AuditWritesSucceeded: atomic.LoadUint64(&m.auditWritesSucceeded),
		AuditWritesFailed:    atomic.LoadUint64(&m.auditWritesFailed),
	}
}

// IncLoginAttempt counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLoginAttempt(outcome string) {
	m.mu.Lock()
	m.loginAttempts[outcome]++
	m.mu.Unlock()
}

// IncSignupAttempt counts a signup attempt by outcome.
func (m *InMemoryRecorder) IncSignupAttempt(outcome string) {
	m.mu.Lock()
	m.signupAttempts[outcome]++
	m.mu.Unlock()
}

// ObserveAuthDuration records time spent handling an auth request.
func (m *InMemoryRecorder) ObserveAuthDuration(duration time.Duration) {
	atomic.AddUint64(&m.authDurationCount, 1)
	atomic.AddInt64(&m.authDurationTotalNs, duration.Nanoseconds())
}

// IncRateLimited counts a request rejected by the rate limiter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// IncAuditWrite counts audit trail writes.
func (m *InMemoryRecorder) IncAuditWrite(status string) {
	if status == "success" {
		atomic.AddUint64(&m.auditWritesSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.auditWritesFailed, 1)
}
