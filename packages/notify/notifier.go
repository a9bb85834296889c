// Package notify posts run summaries to chat webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when checks fail
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when every check passes
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first
	// passing run after a failure
	NotifyRecovery NotifyOn = "recovery"
)

const webhookTimeout = 10 * time.Second

// RunSummary is what notifiers report about a run.
type RunSummary struct {
	BaseURL     string
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	SuccessRate float64
	Duration    time.Duration
	Failures    []FailedCheck
	IsRecovery  bool
}

// FailedCheck names a failed check and its message.
type FailedCheck struct {
	Name    string
	Message string
}

// NewRunSummary builds a RunSummary from a finished run.
func NewRunSummary(result *runner.RunResult) *RunSummary {
	sum := result.Summary
	out := &RunSummary{
		BaseURL:     result.Session.BaseURL,
		Total:       sum.Total,
		Passed:      sum.Passed,
		Failed:      sum.Failed,
		Skipped:     sum.Skipped,
		SuccessRate: sum.SuccessRate,
		Duration:    sum.Duration,
	}
	for _, f := range sum.Failures {
		out.Failures = append(out.Failures, FailedCheck{Name: f.Name, Message: f.Message})
	}
	return out
}

// Notifier is the interface for notification services
type Notifier interface {
	// Notify sends a notification about a run
	Notify(ctx context.Context, summary *RunSummary) error

	// Name returns the name of the notifier
	Name() string
}

// Manager manages multiple notifiers
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run was successful
}

// NewManager creates a new notification manager. An empty policy means
// NotifyFailure.
func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	if notifyOn == "" {
		notifyOn = NotifyFailure
	}
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Len returns the number of registered notifiers.
func (m *Manager) Len() int {
	return len(m.notifiers)
}

// SetLastState seeds the previous run outcome, usually from run history.
func (m *Manager) SetLastState(passed bool) {
	m.lastState = passed
}

// Notify sends notifications based on the configured policy. Every
// notifier is attempted; their errors are joined.
func (m *Manager) Notify(ctx context.Context, summary *RunSummary) error {
	shouldNotify := false
	currentSuccess := summary.Failed == 0

	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = !currentSuccess
	case NotifySuccess:
		shouldNotify = currentSuccess
	case NotifyRecovery:
		if !m.lastState && currentSuccess {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !currentSuccess {
			shouldNotify = true
		}
	}

	m.lastState = currentSuccess

	if !shouldNotify {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// headline returns the title shared by all notifiers.
func headline(summary *RunSummary) (title string, failed bool) {
	switch {
	case summary.Failed > 0:
		return fmt.Sprintf("%d check(s) failed", summary.Failed), true
	case summary.IsRecovery:
		return "Auth checks recovered", false
	default:
		return "All auth checks passed", false
	}
}

func postJSON(ctx context.Context, client *http.Client, url string, msg any, okStatus ...int) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	for _, code := range okStatus {
		if resp.StatusCode == code {
			return nil
		}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
}
