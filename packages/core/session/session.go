package session

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/http"
)

// TestResult is the outcome of a single check. It is never modified after
// it has been recorded on a Session.
type TestResult struct {
	Name           string
	Passed         bool
	Message        string
	ResponseBody   *http.Body
	Method         string
	URL            string
	StatusCode     int
	ExpectedStatus int
	Duration       time.Duration
	RequestID      string
	Err            error
}

type Session struct {
	BaseURL string

	token    string
	lastUser map[string]any
	results  []*TestResult
	passed   int
}

func New(baseURL string) *Session {
	return &Session{BaseURL: baseURL}
}

// Token returns the current bearer token and whether one is held.
func (s *Session) Token() (string, bool) {
	return s.token, s.token != ""
}

// SetToken replaces the held token.
func (s *Session) SetToken(token string) {
	s.token = token
}

func (s *Session) HasToken() bool {
	return s.token != ""
}

// LastUser returns the payload of the last successful registration.
func (s *Session) LastUser() (map[string]any, bool) {
	return s.lastUser, s.lastUser != nil
}

func (s *Session) SetLastUser(user map[string]any) {
	if user == nil {
		s.lastUser = nil
		return
	}
	cp := make(map[string]any, len(user))
	for k, v := range user {
		cp[k] = v
	}
	s.lastUser = cp
}

func (s *Session) HasUser() bool {
	return s.lastUser != nil
}

// UserField returns a field of the last registered user rendered as a string.
func (s *Session) UserField(key string) (string, bool) {
	if s.lastUser == nil {
		return "", false
	}
	v, ok := s.lastUser[key]
	if !ok || v == nil {
		return "", false
	}
	if str, ok := v.(string); ok {
		return str, true
	}
	return fmt.Sprintf("%v", v), true
}

// Record appends a result and updates the counters.
func (s *Session) Record(r *TestResult) {
	s.results = append(s.results, r)
	if r.Passed {
		s.passed++
	}
}

func (s *Session) TestsRun() int {
	return len(s.results)
}

func (s *Session) TestsPassed() int {
	return s.passed
}

func (s *Session) TestsFailed() int {
	return len(s.results) - s.passed
}

// Results returns the recorded results in execution order.
func (s *Session) Results() []*TestResult {
	out := make([]*TestResult, len(s.results))
	copy(out, s.results)
	return out
}

// Failures returns the failed results in execution order.
func (s *Session) Failures() []*TestResult {
	var out []*TestResult
	for _, r := range s.results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// SuccessRate is passed/run*100, or 0 when nothing ran.
func (s *Session) SuccessRate() float64 {
	if len(s.results) == 0 {
		return 0
	}
	return float64(s.passed) / float64(len(s.results)) * 100
}

func (s *Session) AllPassed() bool {
	return s.passed == len(s.results)
}
