package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/medportal/medportal/internal/auth"
	"github.com/medportal/medportal/internal/handler/dto"
	"github.com/medportal/medportal/internal/metrics"
	"github.com/medportal/medportal/internal/model"
	"github.com/medportal/medportal/internal/service"
)

type recordingStore struct {
	mu     sync.Mutex
	events []*model.AuthEvent
}

func (s *recordingStore) RecordAuthEvent(ctx context.Context, event *model.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingStore) ListAuthEvents(ctx context.Context, kinds []string, limit int) ([]*model.AuthEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthHandler(t *testing.T, store service.EventStore, rec metrics.Recorder) *AuthHandler {
	t.Helper()

	creds, err := auth.NewDemoCredentials("admin@hospital.com", "password123", "Admin User")
	if err != nil {
		t.Fatalf("NewDemoCredentials: %v", err)
	}
	svc := service.NewAuthService(creds, store, rec, discardLogger())
	return NewAuthHandler(svc, discardLogger())
}

func doJSON(t *testing.T, fn http.HandlerFunc, path, body string) (*httptest.ResponseRecorder, dto.AuthResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	fn(rec, req)

	var resp dto.AuthResponse
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	h := newTestAuthHandler(t, nil, nil)

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "demo credentials",
			body:        `{"email":"admin@hospital.com","password":"password123"}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: MsgLoginSuccess,
		},
		{
			name:        "wrong password",
			body:        `{"email":"admin@hospital.com","password":"password124"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "unknown email",
			body:        `{"email":"someone@hospital.com","password":"password123"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "missing fields",
			body:        `{}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "extra fields ignored",
			body:        `{"email":"admin@hospital.com","password":"password123","rememberMe":true}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: MsgLoginSuccess,
		},
		{
			name:        "malformed json",
			body:        `{"email":`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgLoginError,
		},
		{
			name:        "empty body",
			body:        ``,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgLoginError,
		},
		{
			name:        "null body",
			body:        `null`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgLoginError,
		},
		{
			name:        "array body",
			body:        `[]`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "scalar body",
			body:        `"admin@hospital.com"`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "numeric email",
			body:        `{"email":123,"password":"password123"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "email wrapped in array",
			body:        `{"email":["admin@hospital.com"],"password":"password123"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "null password",
			body:        `{"email":"admin@hospital.com","password":null}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidCredentials,
		},
		{
			name:        "leading whitespace",
			body:        " \n{\"email\":\"admin@hospital.com\",\"password\":\"password123\"}\n",
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: MsgLoginSuccess,
		},
		{
			name:        "trailing data",
			body:        `{"email":"admin@hospital.com","password":"password123"} x`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgLoginError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, resp := doJSON(t, h.Login, "/api/login", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp.Success != tt.wantSuccess {
				t.Errorf("success = %v, want %v", resp.Success, tt.wantSuccess)
			}
			if resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}

			if tt.wantSuccess {
				if resp.User == nil {
					t.Fatal("expected user object on success")
				}
				if resp.User.ID != "1" || resp.User.Name != "Admin User" || resp.User.Email != "admin@hospital.com" {
					t.Errorf("unexpected user: %+v", resp.User)
				}
			} else if resp.User != nil {
				t.Errorf("expected no user on failure, got %+v", resp.User)
			}
		})
	}
}

func TestAuthHandler_LoginFailureOmitsUserKey(t *testing.T) {
	t.Parallel()

	h := newTestAuthHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"x","password":"y"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["user"]; ok {
		t.Errorf("failure response must not contain a user key: %s", rec.Body.String())
	}
	if raw["success"] != false {
		t.Errorf("expected success:false, got %v", raw["success"])
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Parallel()

	h := newTestAuthHandler(t, nil, nil)

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "valid",
			body:        `{"name":"Jane Doe","email":"jane@example.com","password":"correcthorse"}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: MsgSignupSuccess,
		},
		{
			name:        "missing name",
			body:        `{"email":"jane@example.com","password":"correcthorse"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgMissingFields,
		},
		{
			name:        "missing email",
			body:        `{"name":"Jane","password":"correcthorse"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgMissingFields,
		},
		{
			name:        "empty password",
			body:        `{"name":"Jane","email":"jane@example.com","password":""}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgMissingFields,
		},
		{
			name:        "short password",
			body:        `{"name":"Jane","email":"jane@example.com","password":"1234567"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgPasswordTooShort,
		},
		{
			name:        "malformed json",
			body:        `not json`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgSignupError,
		},
		{
			name:        "null body",
			body:        `null`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgSignupError,
		},
		{
			name:        "numeric password",
			body:        `{"name":"Jane","email":"jane@example.com","password":12345678}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgMissingFields,
		},
		{
			name:        "empty name numeric password",
			body:        `{"name":"","email":"a@b.co","password":12345678}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgMissingFields,
		},
		{
			name:        "array body",
			body:        `[]`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgMissingFields,
		},
		{
			name:        "object name",
			body:        `{"name":{"first":"Jane"},"email":"jane@example.com","password":"correcthorse"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgMissingFields,
		},
		{
			name:        "astral password long enough",
			body:        `{"name":"Jo","email":"a@b.co","password":"😀😀😀😀"}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: MsgSignupSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, resp := doJSON(t, h.Signup, "/api/signup", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp.Success != tt.wantSuccess {
				t.Errorf("success = %v, want %v", resp.Success, tt.wantSuccess)
			}
			if resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
		})
	}
}

func TestAuthHandler_SignupEchoesUser(t *testing.T) {
	t.Parallel()

	h := newTestAuthHandler(t, nil, nil)

	_, resp := doJSON(t, h.Signup, "/api/signup", `{"name":"Dr. Grey","email":"grey@seattle-grace.org","password":"scalpel-42"}`)

	if resp.User == nil {
		t.Fatal("expected user object")
	}
	if resp.User.ID != "2" {
		t.Errorf("user id = %q, want 2", resp.User.ID)
	}
	if resp.User.Name != "Dr. Grey" || resp.User.Email != "grey@seattle-grace.org" {
		t.Errorf("user not echoed: %+v", resp.User)
	}
}

func TestAuthHandler_BodyTooLarge(t *testing.T) {
	t.Parallel()

	h := newTestAuthHandler(t, nil, nil)

	body := `{"name":"` + strings.Repeat("a", 256) + `","email":"a@b.co","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 64)

	h.Signup(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestAuthHandler_AuditsEveryAttempt(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	rec := metrics.NewInMemory()
	h := newTestAuthHandler(t, store, rec)

	doJSON(t, h.Login, "/api/login", `{"email":"admin@hospital.com","password":"password123"}`)
	doJSON(t, h.Login, "/api/login", `{"email":"admin@hospital.com","password":"nope"}`)
	doJSON(t, h.Login, "/api/login", `{`)
	doJSON(t, h.Signup, "/api/signup", `{"name":"Jane"}`)

	if len(store.events) != 4 {
		t.Fatalf("expected 4 audit events, got %d", len(store.events))
	}

	want := []struct {
		kind    model.AuthEventKind
		outcome model.AuthOutcome
		status  int
	}{
		{model.AuthEventLogin, model.OutcomeSuccess, http.StatusOK},
		{model.AuthEventLogin, model.OutcomeRejected, http.StatusUnauthorized},
		{model.AuthEventLogin, model.OutcomeError, http.StatusInternalServerError},
		{model.AuthEventSignup, model.OutcomeInvalid, http.StatusBadRequest},
	}
	for i, w := range want {
		ev := store.events[i]
		if ev.Kind != w.kind || ev.Outcome != w.outcome || ev.StatusCode != w.status {
			t.Errorf("event[%d] = %s/%s/%d, want %s/%s/%d", i, ev.Kind, ev.Outcome, ev.StatusCode, w.kind, w.outcome, w.status)
		}
	}

	snap := rec.Snapshot()
	if snap.LoginAttempts["success"] != 1 || snap.LoginAttempts["rejected"] != 1 || snap.LoginAttempts["error"] != 1 {
		t.Errorf("unexpected login counters: %v", snap.LoginAttempts)
	}
	if snap.SignupAttempts["invalid"] != 1 {
		t.Errorf("unexpected signup counters: %v", snap.SignupAttempts)
	}
}

func TestAuthHandler_NeverLogsPassword(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	creds, err := auth.NewDemoCredentials("admin@hospital.com", "password123", "Admin User")
	if err != nil {
		t.Fatalf("NewDemoCredentials: %v", err)
	}
	h := NewAuthHandler(service.NewAuthService(creds, nil, nil, logger), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"a@b.co","password":"hunter2-secret"`))
	h.Login(httptest.NewRecorder(), req)

	if strings.Contains(logs.String(), "hunter2-secret") {
		t.Errorf("password leaked into logs: %s", logs.String())
	}
}
