// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/medportal/medportal/internal/auth"
	"github.com/medportal/medportal/internal/metrics"
	"github.com/medportal/medportal/internal/model"
)

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("missing required fields")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrAuditDisabled      = errors.New("audit trail is not configured")
	ErrInvalidEventKind   = errors.New("invalid event kind")
)

const (
	// MinPasswordLength is counted in UTF-16 code units (model.TextLength).
	MinPasswordLength = 8

	auditTimeout      = 2 * time.Second
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// CredentialChecker verifies a login attempt.
type CredentialChecker interface {
	Check(email, password string) bool
	Name() string
}

// EventStore persists and lists auth events.
type EventStore interface {
	RecordAuthEvent(ctx context.Context, event *model.AuthEvent) error
	ListAuthEvents(ctx context.Context, kinds []string, limit int) ([]*model.AuthEvent, error)
}

// AuthService implements the demo login and signup checks.
// It holds no per-request state.
type AuthService struct {
	creds   CredentialChecker
	events  EventStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService. events may be nil, in which case
// attempts are only counted, not stored.
func NewAuthService(creds CredentialChecker, events EventStore, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		creds:   creds,
		events:  events,
		metrics: recorder,
		logger:  logger,
	}
}

// Login checks credentials against the demo account.
func (s *AuthService) Login(ctx context.Context, c model.Credentials) (*model.User, error) {
	if !s.creds.Check(c.Email, c.Password) {
		return nil, ErrInvalidCredentials
	}

	return &model.User{
		ID:    model.DemoUserID,
		Name:  s.creds.Name(),
		Email: c.Email,
	}, nil
}

// Signup validates a registration and returns the echoed user.
// Nothing is stored.
func (s *AuthService) Signup(ctx context.Context, r model.Registration) (*model.User, error) {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return nil, ErrMissingFields
	}

	if n := model.TextLength(r.Password); n < MinPasswordLength {
		return nil, fmt.Errorf("%w: %d characters", ErrPasswordTooShort, n)
	}

	return &model.User{
		ID:    model.SignupUserID,
		Name:  r.Name,
		Email: r.Email,
	}, nil
}

// AuditInput describes a finished auth request.
type AuditInput struct {
	Kind       model.AuthEventKind
	Email      string
	Outcome    model.AuthOutcome
	StatusCode int
	ClientIP   string
	RequestID  string
	Duration   time.Duration
}

// Audit counts an auth attempt and, when an event store is configured, records it.
// Store failures are logged and never returned.
func (s *AuthService) Audit(ctx context.Context, in AuditInput) {
	switch in.Kind {
	case model.AuthEventLogin:
		s.metrics.IncLoginAttempt(string(in.Outcome))
	case model.AuthEventSignup:
		s.metrics.IncSignupAttempt(string(in.Outcome))
	}
	s.metrics.ObserveAuthDuration(in.Duration)

	if s.events == nil {
		return
	}

	event := &model.AuthEvent{
		ID:         ulid.Make().String(),
		Kind:       in.Kind,
		Email:      in.Email,
		Outcome:    in.Outcome,
		StatusCode: in.StatusCode,
		ClientIP:   auth.Fingerprint(in.ClientIP),
		RequestID:  in.RequestID,
		CreatedAt:  time.Now().UTC(),
	}

	// Detached from the request so a client disconnect does not drop the row.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := s.events.RecordAuthEvent(writeCtx, event); err != nil {
		s.metrics.IncAuditWrite("failed")
		s.logger.Warn("audit_write_failed",
			"error", err,
			"kind", string(in.Kind),
			"request_id", in.RequestID,
		)
		return
	}
	s.metrics.IncAuditWrite("success")
}

// ListEvents returns the most recent auth events, optionally filtered by kind.
func (s *AuthService) ListEvents(ctx context.Context, kinds []string, limit int) ([]*model.AuthEvent, error) {
	if s.events == nil {
		return nil, ErrAuditDisabled
	}

	for _, k := range kinds {
		if !model.AuthEventKind(k).IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEventKind, k)
		}
	}

	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := s.events.ListAuthEvents(ctx, kinds, limit)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	return events, nil
}
