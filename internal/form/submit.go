package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/medportal/medportal/internal/model"
)

// DefaultSubmitDelay is the simulated latency before a submission is sent.
const DefaultSubmitDelay = 1500 * time.Millisecond

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("form: submission in progress")

// Authenticator receives valid submissions. *service.AuthService and
// *client.Client both satisfy it.
type Authenticator interface {
	Login(ctx context.Context, c model.Credentials) (*model.User, error)
	Signup(ctx context.Context, r model.Registration) (*model.User, error)
}

// Option configures a Form.
type Option func(*Form)

// WithDelay overrides DefaultSubmitDelay. Zero disables the delay.
func WithDelay(d time.Duration) Option {
	return func(f *Form) {
		f.delay = d
	}
}

// Form is the two-tab auth form. Field values are set directly on Login and
// Signup; everything else is read through methods. A Form is safe for use by
// one submitter and concurrent readers.
type Form struct {
	Login  LoginForm
	Signup SignupForm

	auth  Authenticator
	delay time.Duration

	mu           sync.Mutex
	active       Tab
	loading      bool
	general      string
	loginErrors  FieldErrors
	signupErrors FieldErrors
}

// New returns a Form on the login tab.
func New(auth Authenticator, opts ...Option) *Form {
	f := &Form{
		auth:   auth,
		delay:  DefaultSubmitDelay,
		active: TabLogin,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ActiveTab returns the selected tab.
func (f *Form) ActiveTab() Tab {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// SetTab switches tabs and clears the general error. Field errors are kept.
func (f *Form) SetTab(t Tab) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = t
	f.general = ""
}

// Loading reports whether a submission is waiting or in flight.
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// GeneralError returns the message from the last failed submission, or "".
func (f *Form) GeneralError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.general
}

// LoginErrors returns a copy of the login field errors.
func (f *Form) LoginErrors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyErrors(f.loginErrors)
}

// SignupErrors returns a copy of the signup field errors.
func (f *Form) SignupErrors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyErrors(f.signupErrors)
}

// SubmitLogin validates the login tab and, if valid, waits the submit delay
// and sends the credentials. Field errors are returned as FieldErrors without
// contacting the Authenticator.
func (f *Form) SubmitLogin(ctx context.Context) (*model.User, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	f.loginErrors = nil
	f.general = ""
	form := f.Login
	if errs := form.Validate(); errs != nil {
		f.loginErrors = errs
		f.mu.Unlock()
		return nil, errs
	}
	f.loading = true
	f.mu.Unlock()

	return f.finish(ctx, MsgLoginFailed, func(ctx context.Context) (*model.User, error) {
		return f.auth.Login(ctx, form.Credentials())
	})
}

// SubmitSignup is SubmitLogin for the signup tab.
func (f *Form) SubmitSignup(ctx context.Context) (*model.User, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	f.signupErrors = nil
	f.general = ""
	form := f.Signup
	if errs := form.Validate(); errs != nil {
		f.signupErrors = errs
		f.mu.Unlock()
		return nil, errs
	}
	f.loading = true
	f.mu.Unlock()

	return f.finish(ctx, MsgSignupFailed, func(ctx context.Context) (*model.User, error) {
		return f.auth.Signup(ctx, form.Registration())
	})
}

// finish waits the delay, calls send and settles the loading and general error
// state. A cancelled context leaves the general error empty.
func (f *Form) finish(ctx context.Context, failMsg string, send func(context.Context) (*model.User, error)) (*model.User, error) {
	var user *model.User
	err := f.wait(ctx)
	if err == nil {
		user, err = send(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		if ctx.Err() == nil {
			f.general = failMsg
		}
		return nil, err
	}
	return user, nil
}

func (f *Form) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func copyErrors(src FieldErrors) FieldErrors {
	if src == nil {
		return nil
	}
	dst := make(FieldErrors, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
