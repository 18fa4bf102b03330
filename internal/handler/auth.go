package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/medportal/medportal/internal/handler/dto"
	"github.com/medportal/medportal/internal/middleware"
	"github.com/medportal/medportal/internal/model"
	"github.com/medportal/medportal/internal/service"
)

// Response messages for the auth endpoints.
const (
	MsgLoginSuccess       = "Login successful"
	MsgInvalidCredentials = "Invalid email or password"
	MsgLoginError         = "An error occurred during login"
	MsgSignupSuccess      = "Account created successfully"
	MsgMissingFields      = "Missing required fields"
	MsgPasswordTooShort   = "Password must be at least 8 characters"
	MsgSignupError        = "An error occurred during signup"
	MsgBodyTooLarge       = "Request body too large"
)

var (
	errEmptyBody    = errors.New("request body is empty or null")
	errTrailingData = errors.New("unexpected data after JSON value")
)

// AuthHandler serves the login and signup endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := decodeFields(r)
	if err != nil {
		status := h.writeDecodeError(w, err, MsgLoginError)
		h.logger.Error("login_error", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		h.audit(r, model.AuthEventLogin, "", model.OutcomeError, status, start)
		return
	}

	req := dto.LoginRequest{
		Email:    body.str("email"),
		Password: body.str("password"),
	}

	user, err := h.svc.Login(r.Context(), model.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAuth(w, http.StatusUnauthorized, dto.AuthResponse{Message: MsgInvalidCredentials})
		h.audit(r, model.AuthEventLogin, req.Email, model.OutcomeRejected, http.StatusUnauthorized, start)
		return
	}

	writeAuth(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: MsgLoginSuccess,
		User:    dto.ToUserDTO(user),
	})
	h.audit(r, model.AuthEventLogin, req.Email, model.OutcomeSuccess, http.StatusOK, start)
}

// Signup handles POST /api/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := decodeFields(r)
	if err != nil {
		status := h.writeDecodeError(w, err, MsgSignupError)
		h.logger.Error("signup_error", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		h.audit(r, model.AuthEventSignup, "", model.OutcomeError, status, start)
		return
	}

	req := dto.SignupRequest{
		Name:     body.str("name"),
		Email:    body.str("email"),
		Password: body.str("password"),
	}

	user, err := h.svc.Signup(r.Context(), model.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		msg := MsgSignupError
		status := http.StatusInternalServerError
		outcome := model.OutcomeError
		switch {
		case errors.Is(err, service.ErrMissingFields):
			msg, status, outcome = MsgMissingFields, http.StatusBadRequest, model.OutcomeInvalid
		case errors.Is(err, service.ErrPasswordTooShort):
			msg, status, outcome = MsgPasswordTooShort, http.StatusBadRequest, model.OutcomeInvalid
		default:
			h.logger.Error("signup_error", "error", err)
		}
		writeAuth(w, status, dto.AuthResponse{Message: msg})
		h.audit(r, model.AuthEventSignup, req.Email, outcome, status, start)
		return
	}

	writeAuth(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: MsgSignupSuccess,
		User:    dto.ToUserDTO(user),
	})
	h.audit(r, model.AuthEventSignup, req.Email, model.OutcomeSuccess, http.StatusOK, start)
}

// writeDecodeError maps a body decoding failure to a response and returns the status sent.
func (h *AuthHandler) writeDecodeError(w http.ResponseWriter, err error, msg string) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeAuth(w, http.StatusRequestEntityTooLarge, dto.AuthResponse{Message: MsgBodyTooLarge})
		return http.StatusRequestEntityTooLarge
	}
	writeAuth(w, http.StatusInternalServerError, dto.AuthResponse{Message: msg})
	return http.StatusInternalServerError
}

func (h *AuthHandler) audit(r *http.Request, kind model.AuthEventKind, email string, outcome model.AuthOutcome, status int, start time.Time) {
	h.svc.Audit(r.Context(), service.AuditInput{
		Kind:       kind,
		Email:      email,
		Outcome:    outcome,
		StatusCode: status,
		ClientIP:   middleware.ClientIP(r),
		RequestID:  middleware.GetRequestID(r.Context()),
		Duration:   time.Since(start),
	})
}

// jsonFields holds the top-level members of a JSON object body.
type jsonFields map[string]json.RawMessage

// str returns the named member when it is a JSON string. Absent, null and
// non-string members read as "", so they fail the credential and
// required-field checks instead of the decode.
func (f jsonFields) str(key string) string {
	var s string
	if err := json.Unmarshal(f[key], &s); err != nil {
		return ""
	}
	return s
}

// decodeFields reads exactly one JSON value from the body. Syntax errors,
// trailing data, an empty body and a literal null are errors. Any other value
// is accepted; arrays and scalars carry no fields.
func decodeFields(r *http.Request) (jsonFields, error) {
	if r.Body == nil {
		return nil, errEmptyBody
	}

	dec := json.NewDecoder(r.Body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, fmt.Errorf("decode body: %w", err)
	}

	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, fmt.Errorf("decode body: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case 'n':
		return nil, errEmptyBody
	case '{':
		var fields jsonFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		return fields, nil
	default:
		return jsonFields{}, nil
	}
}

func writeAuth(w http.ResponseWriter, status int, resp dto.AuthResponse) {
	writeJSON(w, status, resp)
}
