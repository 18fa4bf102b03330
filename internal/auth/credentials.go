package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

// DemoCredentials is the single hard-coded account accepted by the login endpoint.
// The password is kept only as an argon2id hash.
type DemoCredentials struct {
	email        string
	name         string
	passwordHash string
}

// NewDemoCredentials hashes password and returns a checker for the given account.
func NewDemoCredentials(email, password, name string) (*DemoCredentials, error) {
	if email == "" || password == "" {
		return nil, errors.New("demo email and password are required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	return &DemoCredentials{
		email:        email,
		name:         name,
		passwordHash: hash,
	}, nil
}

// Check reports whether email and password match the demo account exactly.
// The password hash is always evaluated so a wrong email costs the same as a
// wrong password.
func (c *DemoCredentials) Check(email, password string) bool {
	passwordOK, err := VerifyPassword(password, c.passwordHash)
	if err != nil {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(c.email)) == 1
	return emailOK && passwordOK
}

// Name returns the display name of the demo account.
func (c *DemoCredentials) Name() string {
	return c.name
}
