// Package form holds the login and signup form state, its field validation and
// the delayed submission flow.
package form

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/medportal/medportal/internal/model"
)

// Field keys used in FieldErrors.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldTerms           = "terms"
)

// Field error messages.
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgNameTooShort     = "Name must be at least 2 characters"
	MsgPasswordMismatch = "Passwords do not match"
	MsgTermsRequired    = "You must agree to the terms and conditions"
)

// notSpaceOrAt excludes every character a browser treats as whitespace, not
// only the ASCII set RE2 matches with \s.
const notSpaceOrAt = `[^\s\x{0B}\p{Z}\x{FEFF}@]`

var emailShape = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)

// ValidEmail reports whether s has the local@domain.tld shape. It does not
// check deliverability or RFC 5322 syntax.
func ValidEmail(s string) bool {
	return emailShape.MatchString(s)
}

// FieldErrors maps a field key to the message for its first failed rule.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// messages maps field key and failed validator tag to the user-facing text.
var messages = map[string]map[string]string{
	FieldEmail: {
		"required":   MsgEmailRequired,
		"emailshape": MsgEmailInvalid,
	},
	FieldPassword: {
		"required": MsgPasswordRequired,
		"minlen":   MsgPasswordTooShort,
	},
	FieldName: {
		"minlen": MsgNameTooShort,
	},
	FieldConfirmPassword: {
		"eqfield": MsgPasswordMismatch,
	},
	FieldTerms: {
		"required": MsgTermsRequired,
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form key rather than the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	// minlen counts UTF-16 code units like the browser does; the built-in
	// min tag counts runes.
	if err := v.RegisterValidation("minlen", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			panic("minlen: bad parameter " + strconv.Quote(fl.Param()))
		}
		return model.TextLength(fl.Field().String()) >= n
	}); err != nil {
		panic(err)
	}
	return v
}

// check runs the struct rules and converts failures to FieldErrors. It returns
// nil when every field passes.
func check(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable with a non-struct argument.
		panic(err)
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = field + " is invalid"
		}
		out[field] = msg
	}
	return out
}
