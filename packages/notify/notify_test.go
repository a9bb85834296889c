package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
)

type recordingNotifier struct {
	name  string
	calls []*RunSummary
	err   error
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(_ context.Context, s *RunSummary) error {
	r.calls = append(r.calls, s)
	return r.err
}

func passing() *RunSummary { return &RunSummary{Total: 13, Passed: 13, SuccessRate: 100} }

func failing() *RunSummary {
	return &RunSummary{
		Total: 13, Passed: 12, Failed: 1, SuccessRate: 92.3,
		Failures: []FailedCheck{{Name: "User Login", Message: "Expected 200, got 401"}},
	}
}

func TestManager_Policies(t *testing.T) {
	tests := []struct {
		name     string
		on       NotifyOn
		summary  *RunSummary
		expected int
	}{
		{"always on pass", NotifyAlways, passing(), 1},
		{"always on fail", NotifyAlways, failing(), 1},
		{"failure on pass", NotifyFailure, passing(), 0},
		{"failure on fail", NotifyFailure, failing(), 1},
		{"success on pass", NotifySuccess, passing(), 1},
		{"success on fail", NotifySuccess, failing(), 0},
		{"recovery on steady pass", NotifyRecovery, passing(), 0},
		{"recovery on fail", NotifyRecovery, failing(), 1},
		{"default policy is failure", "", passing(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingNotifier{name: "rec"}
			m := NewManager(tt.on, rec)
			require.NoError(t, m.Notify(context.Background(), tt.summary))
			assert.Len(t, rec.calls, tt.expected)
		})
	}
}

func TestManager_Recovery(t *testing.T) {
	rec := &recordingNotifier{name: "rec"}
	m := NewManager(NotifyRecovery, rec)
	m.SetLastState(false)

	require.NoError(t, m.Notify(context.Background(), passing()))
	require.Len(t, rec.calls, 1)
	assert.True(t, rec.calls[0].IsRecovery)

	// a second pass is no longer a recovery
	require.NoError(t, m.Notify(context.Background(), passing()))
	assert.Len(t, rec.calls, 1)
}

func TestManager_JoinsErrors(t *testing.T) {
	bad := &recordingNotifier{name: "bad", err: errors.New("boom")}
	good := &recordingNotifier{name: "good"}
	m := NewManager(NotifyAlways, bad)
	m.AddNotifier(good)
	assert.Equal(t, 2, m.Len())

	err := m.Notify(context.Background(), passing())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Len(t, good.calls, 1, "later notifiers still run")
}

func captureWebhook(t *testing.T, status int) (*httptest.Server, *[]byte) {
	t.Helper()
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return srv, &body
}

func TestSlackNotifier(t *testing.T) {
	srv, body := captureWebhook(t, http.StatusOK)

	n := NewSlackNotifier(srv.URL, WithSlackChannel("#qa"), WithSlackUsername("probe"))
	n.now = func() time.Time { return time.Unix(1700000000, 0) }
	require.NoError(t, n.Notify(context.Background(), failing()))

	var msg slackMessage
	require.NoError(t, json.Unmarshal(*body, &msg))
	assert.Equal(t, "#qa", msg.Channel)
	assert.Equal(t, "probe", msg.Username)
	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, "danger", att.Color)
	assert.Contains(t, att.Title, "1 check(s) failed")
	assert.Contains(t, att.Text, "`User Login`: Expected 200, got 401")
	assert.Equal(t, int64(1700000000), att.TS)

	var rate string
	for _, f := range att.Fields {
		if f.Title == "Success Rate" {
			rate = f.Value
		}
	}
	assert.Equal(t, "92.3%", rate)
}

func TestSlackNotifier_ErrorStatus(t *testing.T) {
	srv, _ := captureWebhook(t, http.StatusForbidden)

	err := NewSlackNotifier(srv.URL).Notify(context.Background(), passing())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestTeamsNotifier(t *testing.T) {
	srv, body := captureWebhook(t, http.StatusAccepted)

	n := NewTeamsNotifier(srv.URL)
	summary := passing()
	summary.IsRecovery = true
	require.NoError(t, n.Notify(context.Background(), summary))

	var msg teamsMessage
	require.NoError(t, json.Unmarshal(*body, &msg))
	require.Len(t, msg.Attachments, 1)
	content := msg.Attachments[0].Content
	assert.Equal(t, "AdaptiveCard", content.Type)
	require.NotEmpty(t, content.Body)
	assert.Equal(t, "Auth checks recovered", content.Body[0].Text)
	assert.True(t, strings.HasPrefix(content.Body[len(content.Body)-1].Text, "_authprobe - "))
}

func TestNewRunSummary(t *testing.T) {
	s := session.New("http://localhost:8080/api")
	s.Record(&session.TestResult{Name: "Health Check", Passed: true, Message: "Status: 200"})
	s.Record(&session.TestResult{Name: "Get Profile", Passed: false, Message: "Expected 200, got 401"})

	result := &runner.RunResult{
		Session:  s,
		Duration: time.Second,
		Summary:  runner.Summarize(s, 2, time.Second),
	}

	sum := NewRunSummary(result)
	assert.Equal(t, "http://localhost:8080/api", sum.BaseURL)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.Skipped)
	assert.InDelta(t, 50.0, sum.SuccessRate, 0.001)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, FailedCheck{Name: "Get Profile", Message: "Expected 200, got 401"}, sum.Failures[0])
}
