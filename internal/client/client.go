// Package client calls the login and signup endpoints over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medportal/medportal/internal/handler/dto"
	"github.com/medportal/medportal/internal/model"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 5 * time.Second

	maxResponseSize = 1 << 20
	userAgent       = "medportal-client/1.0"
)

// APIError is a non-success auth response.
type APIError struct {
	StatusCode int
	Message    string
	// RetryAfter is set for 429 responses.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api: %d %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is a 429 from the API.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// NewHTTPClient returns an http.Client with bounded timeouts that does not
// follow redirects.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   DialTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       30 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Client talks to one API base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a Client for baseURL, such as "http://localhost:8080". A nil
// httpClient uses NewHTTPClient.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url has no host: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{base: u, http: httpClient}, nil
}

// Login posts credentials to /api/login.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	return c.post(ctx, "/api/login", dto.LoginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	})
}

// Signup posts a registration to /api/signup.
func (c *Client) Signup(ctx context.Context, reg model.Registration) (*model.User, error) {
	return c.post(ctx, "/api/signup", dto.SignupRequest{
		Name:     reg.Name,
		Email:    reg.Email,
		Password: reg.Password,
	})
}

func (c *Client) post(ctx context.Context, path string, body any) (*model.User, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	var out dto.AuthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: out.Message}
		if apiErr.Message == "" {
			// JSON, but not an auth envelope (e.g. the router's 404 body).
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return nil, apiErr
	}
	if out.User == nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "response has no user"}
	}

	return &model.User{
		ID:    out.User.ID,
		Name:  out.User.Name,
		Email: out.User.Email,
	}, nil
}
