package model

import "time"

// AuthEventKind identifies which endpoint produced an event.
type AuthEventKind string

// Event kinds.
const (
	AuthEventLogin  AuthEventKind = "login"
	AuthEventSignup AuthEventKind = "signup"
)

// IsValid reports whether k is a known event kind.
func (k AuthEventKind) IsValid() bool {
	return k == AuthEventLogin || k == AuthEventSignup
}

// AuthOutcome is the result class of an auth attempt.
type AuthOutcome string

// Outcomes.
const (
	OutcomeSuccess  AuthOutcome = "success"
	OutcomeRejected AuthOutcome = "rejected" // wrong credentials
	OutcomeInvalid  AuthOutcome = "invalid"  // failed input checks
	OutcomeError    AuthOutcome = "error"    // unreadable request
)

// AuthEvent is one row of the auth audit trail.
type AuthEvent struct {
	ID         string        `json:"id"`
	Kind       AuthEventKind `json:"kind"`
	Email      string        `json:"email"`
	Outcome    AuthOutcome   `json:"outcome"`
	StatusCode int           `json:"status_code"`
	ClientIP   string        `json:"client_ip"` // fingerprint, never the raw address
	RequestID  string        `json:"request_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
