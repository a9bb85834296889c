package scenario

import (
	"context"
	"net/url"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/capture"
	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
)

const (
	// NonexistentEmail is an address no run ever registers.
	NonexistentEmail = "nonexistent@company.com"
	// MalformedToken is syntactically not a signed token.
	MalformedToken = "invalid.token.here"
	// FallbackEmail is used when the registered user carries no email.
	FallbackEmail = "test@company.com"

	tokenPreviewLen = 20
)

// Options tune the generated data.
type Options struct {
	Password string
	Now      func() time.Time
}

type Option func(*Options)

func WithPassword(p string) Option {
	return func(o *Options) {
		if p != "" {
			o.Password = p
		}
	}
}

// WithClock fixes the time used to derive the test identity.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// Tracker returns the full suite in execution order.
func Tracker(opts ...Option) []runner.Scenario {
	o := &Options{Password: DefaultPassword, Now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	return []runner.Scenario{
		{
			Name:           "Health Check",
			Method:         "GET",
			Path:           "auth/health",
			ExpectedStatus: 200,
			Tags:           []string{"smoke"},
			Action:         simple("Health Check", "GET", "auth/health", 200, nil),
		},
		{
			Name:           "User Registration",
			Method:         "POST",
			Path:           "auth/register",
			ExpectedStatus: 200,
			Tags:           []string{"registration"},
			Action:         register(o),
		},
		{
			Name:           "Registration with Duplicate Email",
			Method:         "POST",
			Path:           "auth/register",
			ExpectedStatus: 400,
			Tags:           []string{"registration"},
			Precondition:   runner.RequireUser("duplicate email test"),
			Action:         registerDuplicate(o),
		},
		{
			Name:           "Registration with Invalid Data",
			Method:         "POST",
			Path:           "auth/register",
			ExpectedStatus: 400,
			Tags:           []string{"registration"},
			Action:         simple("Registration with Invalid Data", "POST", "auth/register", 400, InvalidRegistration()),
		},
		{
			Name:           "Login with Email",
			Method:         "POST",
			Path:           "auth/login",
			ExpectedStatus: 200,
			Tags:           []string{"login"},
			Precondition:   runner.RequireUser("email login test"),
			Action:         loginWithEmail(o),
		},
		{
			Name:           "Login with Employee ID",
			Method:         "POST",
			Path:           "auth/login",
			ExpectedStatus: 200,
			Tags:           []string{"login"},
			Precondition:   runner.RequireUser("employee ID login test"),
			Action:         loginWithEmpID(o),
		},
		{
			Name:           "Login with Invalid Credentials",
			Method:         "POST",
			Path:           "auth/login",
			ExpectedStatus: 401,
			Tags:           []string{"login"},
			Action: simple("Login with Invalid Credentials", "POST", "auth/login", 401, Login{
				Identifier: NonexistentEmail,
				Password:   "WrongPassword123!",
			}),
		},
		{
			Name:           "Token Validation",
			Method:         "POST",
			Path:           "auth/validate-token",
			ExpectedStatus: 200,
			Tags:           []string{"token"},
			Precondition:   runner.RequireToken("token validation test"),
			Action:         validateToken,
		},
		{
			Name:           "Invalid Token Validation",
			Method:         "POST",
			Path:           "auth/validate-token",
			ExpectedStatus: 401,
			Tags:           []string{"token"},
			Action:         validateMalformedToken,
		},
		{
			Name:           "Check Email Exists",
			Method:         "GET",
			Path:           "auth/check-email?email={companyEmail}",
			ExpectedStatus: 200,
			Tags:           []string{"utility"},
			Precondition:   runner.RequireUser("email check test"),
			Action:         checkRegisteredEmail,
		},
		{
			Name:           "Check Non-existent Email",
			Method:         "GET",
			Path:           "auth/check-email?email=" + NonexistentEmail,
			ExpectedStatus: 200,
			Tags:           []string{"utility"},
			Action: simple("Check Non-existent Email", "GET",
				"auth/check-email?email="+url.QueryEscape(NonexistentEmail), 200, nil),
		},
		{
			Name:           "Forgot Password",
			Method:         "POST",
			Path:           "auth/forgot-password?identifier={companyEmail}",
			ExpectedStatus: 200,
			Tags:           []string{"utility"},
			Precondition:   runner.RequireUser("forgot password test"),
			Action:         forgotPassword,
		},
		{
			Name:           "Get User Profile",
			Method:         "GET",
			Path:           "auth/profile",
			ExpectedStatus: 200,
			Tags:           []string{"profile"},
			Precondition:   runner.RequireToken("profile test"),
			Action:         simple("Get User Profile", "GET", "auth/profile", 200, nil),
		},
	}
}

func simple(name, method, endpoint string, expected int, body any) runner.Action {
	return func(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
		return e.Execute(ctx, s, runner.Call{
			Name:           name,
			Method:         method,
			Endpoint:       endpoint,
			ExpectedStatus: expected,
			Body:           body,
		})
	}
}

func register(o *Options) runner.Action {
	return func(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
		out := e.Execute(ctx, s, runner.Call{
			Name:           "User Registration",
			Method:         "POST",
			Endpoint:       "auth/register",
			ExpectedStatus: 200,
			Body:           NewRegistration(o.Now(), o.Password),
		})
		if !out.Success {
			return out
		}
		if token, ok := capture.Token(out.Body); ok {
			s.SetToken(token)
			if data, ok := capture.NewExtractor(out.Body).Object(capture.PathData); ok {
				s.SetLastUser(data)
			}
			e.Note("Token received: %s...", preview(token))
		}
		return out
	}
}

func registerDuplicate(o *Options) runner.Action {
	return func(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
		email, ok := s.UserField("companyEmail")
		if !ok {
			email = FallbackEmail
		}
		return e.Execute(ctx, s, runner.Call{
			Name:           "Registration with Duplicate Email",
			Method:         "POST",
			Endpoint:       "auth/register",
			ExpectedStatus: 400,
			Body:           DuplicateRegistration(email, o.Password),
		})
	}
}

func loginWithEmail(o *Options) runner.Action {
	return func(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
		email, _ := s.UserField("companyEmail")
		out := e.Execute(ctx, s, runner.Call{
			Name:           "Login with Email",
			Method:         "POST",
			Endpoint:       "auth/login",
			ExpectedStatus: 200,
			Body:           Login{Identifier: email, Password: o.Password},
		})
		if out.Success {
			if token, ok := capture.Token(out.Body); ok {
				s.SetToken(token)
				e.Note("New token received: %s...", preview(token))
			}
		}
		return out
	}
}

func loginWithEmpID(o *Options) runner.Action {
	return func(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
		empID, _ := s.UserField("empId")
		return e.Execute(ctx, s, runner.Call{
			Name:           "Login with Employee ID",
			Method:         "POST",
			Endpoint:       "auth/login",
			ExpectedStatus: 200,
			Body:           Login{Identifier: empID, Password: o.Password},
		})
	}
}

func validateToken(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
	token, _ := s.Token()
	return e.Execute(ctx, s, runner.Call{
		Name:           "Token Validation",
		Method:         "POST",
		Endpoint:       "auth/validate-token",
		ExpectedStatus: 200,
		Headers:        map[string]string{"Authorization": "Bearer " + token},
	})
}

func validateMalformedToken(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
	return e.Execute(ctx, s, runner.Call{
		Name:           "Invalid Token Validation",
		Method:         "POST",
		Endpoint:       "auth/validate-token",
		ExpectedStatus: 401,
		Headers:        map[string]string{"Authorization": "Bearer " + MalformedToken},
	})
}

func checkRegisteredEmail(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
	email, _ := s.UserField("companyEmail")
	return e.Execute(ctx, s, runner.Call{
		Name:           "Check Email Exists",
		Method:         "GET",
		Endpoint:       "auth/check-email?email=" + url.QueryEscape(email),
		ExpectedStatus: 200,
	})
}

func forgotPassword(ctx context.Context, e *runner.Executor, s *session.Session) runner.Outcome {
	email, _ := s.UserField("companyEmail")
	return e.Execute(ctx, s, runner.Call{
		Name:           "Forgot Password",
		Method:         "POST",
		Endpoint:       "auth/forgot-password?identifier=" + url.QueryEscape(email),
		ExpectedStatus: 200,
	})
}

func preview(token string) string {
	if len(token) <= tokenPreviewLen {
		return token
	}
	return token[:tokenPreviewLen]
}
