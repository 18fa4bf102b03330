// Package model defines domain entities for the application.
package model

import "unicode/utf16"

// User is the account summary returned by the auth endpoints.
// It is never persisted.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Fixed IDs handed out by the demo endpoints.
const (
	DemoUserID   = "1"
	SignupUserID = "2"
)

// Credentials is a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Registration is a signup attempt.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// TextLength returns the length of s in UTF-16 code units, the unit browsers
// and JavaScript use for string length. Characters outside the Basic
// Multilingual Plane count as two.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
			continue
		}
		n++
	}
	return n
}
