package runner

import (
	"context"

	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
)

// Precondition returns a non-empty skip reason when the session lacks state a
// scenario depends on.
type Precondition func(s *session.Session) string

// Action performs a scenario's request(s) and any session updates.
type Action func(ctx context.Context, e *Executor, s *session.Session) Outcome

// Scenario is one named check in a suite. Method, Path and ExpectedStatus
// describe the check for listings; Action is what actually runs.
type Scenario struct {
	Name           string
	Method         string
	Path           string
	ExpectedStatus int
	Tags           []string
	Precondition   Precondition
	Action         Action
}

// RequireUser skips unless a registration has succeeded.
func RequireUser(what string) Precondition {
	return func(s *session.Session) string {
		if s.HasUser() {
			return ""
		}
		return "Skipping " + what + " - no user data available"
	}
}

// RequireToken skips unless a bearer token is held.
func RequireToken(what string) Precondition {
	return func(s *session.Session) string {
		if s.HasToken() {
			return ""
		}
		return "Skipping " + what + " - no token available"
	}
}
