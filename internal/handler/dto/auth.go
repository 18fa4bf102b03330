// Package dto defines request and response bodies for the HTTP API.
package dto

import "github.com/medportal/medportal/internal/model"

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /api/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the envelope returned by both auth endpoints.
// User is present only on success.
type AuthResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    *UserDTO `json:"user,omitempty"`
}

// UserDTO is the user object embedded in a successful AuthResponse.
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents a non-auth API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AuthEventResponse is one audit trail entry.
type AuthEventResponse struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Email      string `json:"email"`
	Outcome    string `json:"outcome"`
	StatusCode int    `json:"status_code"`
	ClientIP   string `json:"client_ip"`
	RequestID  string `json:"request_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// AuthEventListResponse wraps a list of audit events.
type AuthEventListResponse struct {
	Data []*AuthEventResponse `json:"data"`
}

// ToUserDTO converts a User model.
func ToUserDTO(u *model.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ToAuthEventListResponse converts audit events.
func ToAuthEventListResponse(events []*model.AuthEvent) *AuthEventListResponse {
	data := make([]*AuthEventResponse, 0, len(events))
	for _, e := range events {
		data = append(data, &AuthEventResponse{
			ID:         e.ID,
			Kind:       string(e.Kind),
			Email:      e.Email,
			Outcome:    string(e.Outcome),
			StatusCode: e.StatusCode,
			ClientIP:   e.ClientIP,
			RequestID:  e.RequestID,
			CreatedAt:  e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return &AuthEventListResponse{Data: data}
}
