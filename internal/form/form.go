package form

import "github.com/medportal/medportal/internal/model"

// Tab selects which form is active.
type Tab string

// Tabs.
const (
	TabLogin  Tab = "login"
	TabSignup Tab = "signup"
)

// General error messages shown after a failed submission.
const (
	MsgLoginFailed  = "Invalid email or password. Please try again."
	MsgSignupFailed = "An error occurred during signup. Please try again."
)

// LoginForm holds the login tab fields.
type LoginForm struct {
	Email      string `form:"email" validate:"required,emailshape"`
	Password   string `form:"password" validate:"required,minlen=8"`
	RememberMe bool   `form:"rememberMe"`
}

// Validate returns the field errors for f, or nil.
func (f LoginForm) Validate() FieldErrors {
	return check(f)
}

// Credentials returns the values sent to the login endpoint.
func (f LoginForm) Credentials() model.Credentials {
	return model.Credentials{Email: f.Email, Password: f.Password}
}

// SignupForm holds the signup tab fields.
type SignupForm struct {
	Name            string `form:"name" validate:"minlen=2"`
	Email           string `form:"email" validate:"required,emailshape"`
	Password        string `form:"password" validate:"required,minlen=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
	AgreeToTerms    bool   `form:"terms" validate:"required"`
}

// Validate returns the field errors for f, or nil.
func (f SignupForm) Validate() FieldErrors {
	return check(f)
}

// Registration returns the values sent to the signup endpoint.
func (f SignupForm) Registration() model.Registration {
	return model.Registration{Name: f.Name, Email: f.Email, Password: f.Password}
}
