package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
	"github.com/abdul-hamid-achik/authprobe/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *runner.RunResult {
	s := session.New("http://localhost:8080/api")
	s.Record(&session.TestResult{
		Name:           "Health Check",
		Passed:         true,
		Message:        "Status: 200 - Auth service is running",
		Method:         "GET",
		URL:            "http://localhost:8080/api/auth/health",
		StatusCode:     200,
		ExpectedStatus: 200,
		Duration:       12 * time.Millisecond,
		ResponseBody:   http.ParseBody([]byte(`{"success":true,"message":"Auth service is running"}`)),
	})
	s.Record(&session.TestResult{
		Name:           "User Registration",
		Passed:         false,
		Message:        "Status: 500 (Expected: 200) - database down",
		Method:         "POST",
		URL:            "http://localhost:8080/api/auth/register",
		StatusCode:     500,
		ExpectedStatus: 200,
		Duration:       30 * time.Millisecond,
	})
	s.Record(&session.TestResult{
		Name:           "Login with Invalid Credentials",
		Passed:         false,
		Message:        "Request failed: connection refused",
		Method:         "POST",
		URL:            "http://localhost:8080/api/auth/login",
		ExpectedStatus: 401,
		Err:            errors.New("connection refused"),
	})

	skipped := []runner.SkipNotice{{Name: "Get User Profile", Reason: "Skipping profile test - no token available"}}
	return &runner.RunResult{
		Session:  s,
		Skipped:  skipped,
		Duration: 50 * time.Millisecond,
		Summary:  runner.Summarize(s, len(skipped), 50*time.Millisecond),
	}
}

func TestConsoleFormatter_Summary(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResult(sampleResult())
	out := buf.String()

	assert.Contains(t, out, "📊 TEST SUMMARY")
	assert.Contains(t, out, "Total Tests: 3")
	assert.Contains(t, out, "Passed: 1")
	assert.Contains(t, out, "Failed: 2")
	assert.Contains(t, out, "Skipped: 1")
	assert.Contains(t, out, "Success Rate: 33.3%")
	assert.Contains(t, out, "❌ FAILED TESTS:")
	assert.Contains(t, out, "   • User Registration: Status: 500 (Expected: 200) - database down")
	assert.Contains(t, out, "   • Login with Invalid Credentials: Request failed: connection refused")
}

func TestConsoleFormatter_NoFailures(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatSummary(runner.Summary{Total: 2, Passed: 2, SuccessRate: 100})
	out := buf.String()

	assert.Contains(t, out, "Success Rate: 100.0%")
	assert.NotContains(t, out, "FAILED TESTS")
	assert.NotContains(t, out, "Skipped:")
}

func TestConsoleFormatter_Progress(t *testing.T) {
	var buf, errBuf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithErrWriter(&errBuf), WithNoColor(true))

	f.RequestStarted("User Registration", "POST", "http://x/api/auth/register", map[string]string{"fullName": "Test User"})
	f.ResponseReceived(&http.Response{StatusCode: 200}, http.ParseBody([]byte(`{"success":true}`)))
	f.ResultRecorded(&session.TestResult{Name: "User Registration", Passed: true, Message: "Status: 200 - ok"})
	f.ResponseReceived(&http.Response{StatusCode: 502}, http.RawText("Bad Gateway"))
	f.ResultRecorded(&session.TestResult{Name: "Health Check", Message: "Status: 502 (Expected: 200)"})
	f.ScenarioSkipped("Get User Profile", "Skipping profile test - no token available")
	f.Note("Token received: abc...")
	f.Note("warning: service not ready")

	out := buf.String()
	assert.Contains(t, out, "🔍 Testing User Registration...")
	assert.Contains(t, out, "   URL: http://x/api/auth/register")
	assert.Contains(t, out, "   Method: POST")
	assert.Contains(t, out, `"fullName": "Test User"`)
	assert.Contains(t, out, "   Response Status: 200")
	assert.Contains(t, out, "✅ User Registration: PASSED - Status: 200 - ok")
	assert.Contains(t, out, "   Raw Response: Bad Gateway")
	assert.Contains(t, out, "❌ Health Check: FAILED - Status: 502 (Expected: 200)")
	assert.Contains(t, out, "⚠️  Skipping profile test - no token available")
	assert.Contains(t, out, "Token received: abc...")
	assert.NotContains(t, out, "warning:")
	assert.Equal(t, "warning: service not ready\n", errBuf.String())
}

func TestConsoleFormatter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithQuiet(true))

	f.RequestStarted("Health Check", "GET", "http://x/api/auth/health", nil)
	f.ResultRecorded(&session.TestResult{Name: "Health Check", Passed: true})
	assert.Empty(t, buf.String())

	f.FormatSummary(runner.Summary{Total: 1, Passed: 1, SuccessRate: 100})
	assert.Contains(t, buf.String(), "Total Tests: 1")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(50*time.Millisecond))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "http://localhost:8080/api", out.BaseURL)
	assert.Equal(t, 3, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Passed)
	assert.Equal(t, 2, out.Summary.Failed)
	assert.Equal(t, 1, out.Summary.Skipped)
	assert.InDelta(t, 33.33, out.Summary.SuccessRate, 0.01)
	require.NotNil(t, out.Latency)
	require.Len(t, out.Tests, 4)

	assert.Equal(t, "Health Check", out.Tests[0].Name)
	assert.True(t, out.Tests[0].Passed)
	assert.Equal(t, map[string]any{"success": true, "message": "Auth service is running"}, out.Tests[0].Response)
	assert.Equal(t, "connection refused", out.Tests[2].Error)
	assert.True(t, out.Tests[3].Skipped)
	assert.Equal(t, "Skipping profile test - no token available", out.Tests[3].SkipReason)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(50*time.Millisecond))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	assert.Equal(t, 4, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	assert.Equal(t, 1, suites.Skipped)

	require.Len(t, suites.TestSuites, 1)
	cases := suites.TestSuites[0].TestCases
	require.Len(t, cases, 4)
	assert.Nil(t, cases[0].Failure)
	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "StatusMismatch", cases[1].Failure.Type)
	require.NotNil(t, cases[2].Error)
	require.NotNil(t, cases[3].Skipped)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(50*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "TAP version 13\n1..4\n")
	assert.Contains(t, out, "ok 1 - Health Check\n")
	assert.Contains(t, out, "not ok 2 - User Registration\n")
	assert.Contains(t, out, `  message: "Status: 500 (Expected: 200) - database down"`)
	assert.Contains(t, out, "not ok 3 - Login with Invalid Credentials\n")
	assert.Contains(t, out, "  severity: error\n")
	assert.Contains(t, out, "ok 4 - Get User Profile # SKIP Skipping profile test - no token available\n")
}

func TestHTMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHTMLFormatter(HTMLWithWriter(&buf))

	f.FormatHeader("1.0.0")
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(50*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "authprobe 1.0.0")
	assert.Contains(t, out, "Success Rate: <strong>33.3%</strong>")
	assert.Contains(t, out, `<tr class="failed">`)
	assert.Contains(t, out, `<tr class="skipped">`)
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: b"`, escapeYAML("a: b"))
	assert.Equal(t, `"say \"hi\"!"`, escapeYAML(`say "hi"!`))
}
