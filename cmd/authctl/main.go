// Command authctl fills in the login or signup form from flags and submits it,
// either to a running API or to an in-process service.
//
//	authctl login -email admin@hospital.com -password password123
//	authctl signup -name "Jane Doe" -email jane@example.com -password longenough -confirm longenough -terms
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/medportal/medportal/internal/auth"
	"github.com/medportal/medportal/internal/client"
	"github.com/medportal/medportal/internal/config"
	"github.com/medportal/medportal/internal/form"
	"github.com/medportal/medportal/internal/model"
	"github.com/medportal/medportal/internal/service"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	defaultAPI  = "http://localhost:8080"
	apiEnvVar   = "MEDPORTAL_API_URL"
	outputPlain = "plain"
	outputJSON  = "json"
)

type options struct {
	api    string
	local  bool
	delay  time.Duration
	format string
}

// result is the json output shape.
type result struct {
	Success     bool             `json:"success"`
	User        *model.User      `json:"user,omitempty"`
	Error       string           `json:"error,omitempty"`
	FieldErrors form.FieldErrors `json:"field_errors,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet("authctl "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	api := os.Getenv(apiEnvVar)
	if api == "" {
		api = defaultAPI
	}

	var opts options
	fs.StringVar(&opts.api, "api", api, "API base URL (env "+apiEnvVar+")")
	fs.BoolVar(&opts.local, "local", false, "check against the demo account in-process instead of calling the API")
	fs.DurationVar(&opts.delay, "delay", form.DefaultSubmitDelay, "simulated delay before submitting")
	fs.StringVar(&opts.format, "format", outputPlain, "output format: plain or json")

	var (
		login  form.LoginForm
		signup form.SignupForm
	)
	switch cmd {
	case "login":
		fs.StringVar(&login.Email, "email", "", "email address")
		fs.StringVar(&login.Password, "password", "", "password")
		fs.BoolVar(&login.RememberMe, "remember", false, "remember me")
	case "signup":
		fs.StringVar(&signup.Name, "name", "", "full name")
		fs.StringVar(&signup.Email, "email", "", "email address")
		fs.StringVar(&signup.Password, "password", "", "password")
		fs.StringVar(&signup.ConfirmPassword, "confirm", "", "password confirmation")
		fs.BoolVar(&signup.AgreeToTerms, "terms", false, "agree to the terms and conditions")
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		usage(stderr)
		return exitUsage
	}

	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.format != outputPlain && opts.format != outputJSON {
		fmt.Fprintf(stderr, "unknown format %q\n", opts.format)
		return exitUsage
	}

	authenticator, err := newAuthenticator(opts)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitFailed
	}

	f := form.New(authenticator, form.WithDelay(opts.delay))

	var (
		user      *model.User
		fieldErrs form.FieldErrors
	)
	switch cmd {
	case "login":
		f.Login = login
		user, err = f.SubmitLogin(ctx)
		fieldErrs = f.LoginErrors()
	case "signup":
		f.SetTab(form.TabSignup)
		f.Signup = signup
		user, err = f.SubmitSignup(ctx)
		fieldErrs = f.SignupErrors()
	}

	res := result{Success: err == nil, User: user, FieldErrors: fieldErrs}
	if err != nil && len(fieldErrs) == 0 {
		res.Error = f.GeneralError()
		if res.Error == "" {
			res.Error = err.Error()
		}
	}

	if opts.format == outputJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
	} else {
		printPlain(stdout, res)
	}

	if !res.Success {
		return exitFailed
	}
	return exitOK
}

func newAuthenticator(opts options) (form.Authenticator, error) {
	if !opts.local {
		c, err := client.New(opts.api, nil)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	creds, err := auth.NewDemoCredentials(cfg.DemoEmail, cfg.DemoPassword, cfg.DemoUserName)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewAuthService(creds, nil, nil, logger), nil
}

func printPlain(w io.Writer, res result) {
	if res.Success {
		fmt.Fprintf(w, "ok: %s <%s> (id %s)\n", res.User.Name, res.User.Email, res.User.ID)
		return
	}

	keys := make([]string, 0, len(res.FieldErrors))
	for k := range res.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, res.FieldErrors[k])
	}
	if res.Error != "" {
		fmt.Fprintf(w, "error: %s\n", res.Error)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: authctl <login|signup> [flags]

Run "authctl login -h" or "authctl signup -h" for flags.
`)
}
