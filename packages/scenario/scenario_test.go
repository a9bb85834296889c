package scenario

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
	"github.com/abdul-hamid-achik/authprobe/packages/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 5, 1, 14, 30, 22, 0, time.UTC)
}

type notes struct {
	runner.NopListener
	lines []string
	skips []string
}

func (n *notes) Note(msg string) { n.lines = append(n.lines, msg) }
func (n *notes) ScenarioSkipped(name, reason string) { n.skips = append(n.skips, reason) }

func TestNewRegistration(t *testing.T) {
	reg := NewRegistration(fixedClock(), DefaultPassword)

	assert.Equal(t, "Test User 143022", reg.FullName)
	assert.Equal(t, "IT", reg.Department)
	assert.Equal(t, "EMP143022", reg.EmpID)
	assert.Equal(t, "9876543022", reg.MobileNo)
	assert.Equal(t, "test143022@company.com", reg.CompanyEmail)
	assert.Equal(t, reg.Password, reg.ConfirmPassword)
}

func TestTracker_Order(t *testing.T) {
	names := make([]string, 0, 13)
	for _, sc := range Tracker() {
		names = append(names, sc.Name)
		assert.NotNil(t, sc.Action, sc.Name)
	}

	assert.Equal(t, []string{
		"Health Check",
		"User Registration",
		"Registration with Duplicate Email",
		"Registration with Invalid Data",
		"Login with Email",
		"Login with Employee ID",
		"Login with Invalid Credentials",
		"Token Validation",
		"Invalid Token Validation",
		"Check Email Exists",
		"Check Non-existent Email",
		"Forgot Password",
		"Get User Profile",
	}, names)
}

func TestTracker_AgainstMock(t *testing.T) {
	svc := mock.NewServer(mock.WithBcryptCost(bcrypt.MinCost))
	server := httptest.NewServer(svc.Handler())
	defer server.Close()

	listener := &notes{}
	r := runner.NewRunner(&runner.Config{
		BaseURL:        server.URL + mock.BasePath,
		StrictEnvelope: true,
		Listener:       listener,
	})

	result := r.Run(context.Background(), Tracker(WithClock(fixedClock)))

	for _, f := range result.Summary.Failures {
		t.Logf("failed: %s: %s", f.Name, f.Message)
	}
	assert.Equal(t, 13, result.Summary.Total)
	assert.Equal(t, 13, result.Summary.Passed)
	assert.Equal(t, 0, result.Summary.Skipped)
	assert.Equal(t, 100.0, result.Summary.SuccessRate)
	assert.True(t, result.Summary.OK())
	assert.Equal(t, 1, svc.Users())

	email, ok := result.Session.UserField("companyEmail")
	require.True(t, ok)
	assert.Equal(t, "test143022@company.com", email)

	require.Len(t, listener.lines, 2)
	assert.True(t, strings.HasPrefix(listener.lines[0], "Token received: "))
	assert.True(t, strings.HasSuffix(listener.lines[0], "..."))
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(listener.lines[0], "Token received: "), "..."), 20)
	assert.True(t, strings.HasPrefix(listener.lines[1], "New token received"))
}

func TestTracker_SkipsWithoutRegistration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/auth/register") {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false,"message":"database down"}`))
			return
		}
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer server.Close()

	listener := &notes{}
	r := runner.NewRunner(&runner.Config{BaseURL: server.URL, Listener: listener})
	result := r.Run(context.Background(), Tracker(WithClock(fixedClock)))

	// Seven scenarios depend on a registered user or a token.
	assert.Equal(t, 6, result.Summary.Total)
	assert.Equal(t, 7, result.Summary.Skipped)
	assert.Contains(t, listener.skips, "Skipping duplicate email test - no user data available")
	assert.Contains(t, listener.skips, "Skipping token validation test - no token available")
	assert.Contains(t, listener.skips, "Skipping profile test - no token available")
	assert.False(t, result.Summary.OK())

	names := make([]string, 0)
	for _, f := range result.Summary.Failures {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "User Registration")
}

func TestTracker_RegistrationWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"ok","data":{"companyEmail":"a@company.com"}}`))
	}))
	defer server.Close()

	r := runner.NewRunner(&runner.Config{BaseURL: server.URL})
	s := session.New(server.URL)
	r.RunSession(context.Background(), s, Tracker()[:2])

	assert.False(t, s.HasToken())
	assert.False(t, s.HasUser())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	assert.Equal(t, "abcdefghijklmnopqrst", preview("abcdefghijklmnopqrstuvwxyz"))
}
