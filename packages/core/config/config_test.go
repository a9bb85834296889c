package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, "http://localhost:8080/api", c.BaseURL)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, "TestPass123!", c.Password)
	assert.Equal(t, 2*time.Second, c.GetStartupDelay())
	assert.True(t, c.GetFollowRedirects())
	assert.True(t, c.GetValidateSSL())
	assert.False(t, c.GetStrictEnvelope())
	assert.True(t, c.IsDefault())
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "authprobe.yaml", `
baseURL: http://tracker.internal:9090/api
timeout: 3s
startupDelay: 0s
strictEnvelope: true
rateLimit: 5
headers:
  X-Team: qa
tags: [smoke, login]
waitFor:
  endpoint: auth/health
  status: 200
  timeout: 30s
notify:
  on: failure
  slack:
    webhook: https://hooks.slack.com/services/T000/B000/XXX
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://tracker.internal:9090/api", c.BaseURL)
	assert.Equal(t, 3*time.Second, c.Timeout)
	assert.Equal(t, time.Duration(0), c.GetStartupDelay())
	assert.True(t, c.GetStrictEnvelope())
	assert.Equal(t, 5.0, c.RateLimit)
	assert.Equal(t, map[string]string{"X-Team": "qa"}, c.Headers)
	assert.Equal(t, []string{"smoke", "login"}, c.Tags)
	require.NotNil(t, c.WaitFor)
	assert.Equal(t, 30*time.Second, c.WaitFor.Timeout)
	require.NotNil(t, c.Notify)
	assert.Equal(t, "failure", c.Notify.On)

	// unset fields keep their defaults
	assert.Equal(t, "TestPass123!", c.Password)
	assert.True(t, c.GetValidateSSL())
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "authprobe.json", `{"baseURL": "http://127.0.0.1:8080/api", "timeout": "1500ms", "validateSSL": false}`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/api", c.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, c.Timeout)
	assert.False(t, c.GetValidateSSL())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "authprobe.yaml", "timeout: soon\n")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "cannot parse config")
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	_, err := FindConfigFile(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	writeFile(t, dir, "authprobe.json", "{}")
	writeFile(t, dir, ".authprobe.yaml", "{}")

	found, err := FindConfigFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".authprobe.yaml"), found)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1", "B": "1"}

	merged := base.Merge(&Config{
		BaseURL:        "http://other/api",
		StrictEnvelope: BoolPtr(true),
		StartupDelay:   DurationPtr(0),
		Headers:        map[string]string{"B": "2"},
	})

	assert.Equal(t, "http://other/api", merged.BaseURL)
	assert.Equal(t, DefaultTimeout, merged.Timeout)
	assert.True(t, merged.GetStrictEnvelope())
	assert.Equal(t, time.Duration(0), merged.GetStartupDelay())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)

	// the receiver is untouched
	assert.Equal(t, "1", base.Headers["B"])
	assert.Same(t, base, base.Merge(nil))
}

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(map[string]string{
		"BASE_URL":        "http://ci-backend:8080/api",
		"TIMEOUT":         "4s",
		"STARTUP_DELAY":   "0s",
		"STRICT_ENVELOPE": "yes",
		"RATE_LIMIT":      "2.5",
		"TAGS":            "smoke, ,token",
		"SLACK_WEBHOOK":   "https://hooks.slack.com/services/x",
		"SLACK_CHANNEL":   "#qa",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://ci-backend:8080/api", c.BaseURL)
	assert.Equal(t, 4*time.Second, c.Timeout)
	assert.Equal(t, time.Duration(0), c.GetStartupDelay())
	assert.True(t, c.GetStrictEnvelope())
	assert.Equal(t, 2.5, c.RateLimit)
	assert.Equal(t, []string{"smoke", "token"}, c.Tags)
	require.NotNil(t, c.Notify)
	assert.Equal(t, "#qa", c.Notify.Slack.Channel)
	assert.Nil(t, c.Metrics)
}

func TestFromEnv_NotifyAndMetrics(t *testing.T) {
	c, err := FromEnv(map[string]string{
		"TEAMS_WEBHOOK":    "https://example.webhook.office.com/x",
		"NOTIFY_ON":        "recovery",
		"METRICS_TEXTFILE": "/var/lib/node_exporter/authprobe.prom",
		"DATADOG_API_KEY":  "dd-key",
		"DATADOG_TAGS":     "env:ci,team:auth",
	})
	require.NoError(t, err)

	require.NotNil(t, c.Notify)
	assert.Nil(t, c.Notify.Slack)
	require.NotNil(t, c.Notify.Teams)
	assert.Equal(t, "recovery", c.Notify.On)

	require.NotNil(t, c.Metrics)
	assert.Equal(t, "/var/lib/node_exporter/authprobe.prom", c.Metrics.Textfile)
	require.NotNil(t, c.Metrics.Datadog)
	assert.Equal(t, []string{"env:ci", "team:auth"}, c.Metrics.Datadog.Tags)
	assert.NoError(t, DefaultConfig().Merge(c).Validate())
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(map[string]string{"TIMEOUT": "ten", "RATE_LIMIT": "fast"})
	assert.ErrorContains(t, err, "AUTHPROBE_TIMEOUT")
	assert.ErrorContains(t, err, "AUTHPROBE_RATE_LIMIT")
}

func TestResolve(t *testing.T) {
	t.Setenv("TRACKER_TEST_PASSWORD", "FromEnv123!")

	c := DefaultConfig().Merge(&Config{
		BaseURL:  "http://{{host}}:8080/api",
		Password: "{{$TRACKER_TEST_PASSWORD}}",
		Headers:  map[string]string{"X-Run": "run-{{date('20060102')}}"},
		Vars:     map[string]string{"host": "tracker.local"},
	})

	resolved := c.Resolve(env.NewResolver())
	assert.Equal(t, "http://tracker.local:8080/api", resolved.BaseURL)
	assert.Equal(t, "FromEnv123!", resolved.Password)
	assert.Regexp(t, `^run-\d{8}$`, resolved.Headers["X-Run"])
	assert.Equal(t, "http://{{host}}:8080/api", c.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }, "BaseURL: failed url"},
		{"empty password", func(c *Config) { c.Password = "" }, "Password: failed required"},
		{"unknown output", func(c *Config) { c.Output = "xml" }, "Output: failed oneof"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "RateLimit: failed gte=0"},
		{"wait for without timeout", func(c *Config) { c.WaitFor = &WaitFor{Endpoint: "auth/health"} }, "WaitFor.Timeout: failed gt=0"},
		{"slack without webhook", func(c *Config) { c.Notify = &Notify{Slack: &Slack{}} }, "Notify.Slack.Webhook: failed required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authprobe.yaml")
	c := DefaultConfig()
	c.Tags = []string{"smoke"}
	require.NoError(t, c.SaveConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 10s")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
