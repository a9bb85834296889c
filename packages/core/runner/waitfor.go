package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/http"
)

// WaitForConfig polls an endpoint until it answers with Status.
type WaitForConfig struct {
	Endpoint string
	Status   int
	Timeout  time.Duration
	Interval time.Duration
}

// waitForService polls the endpoint until it returns the expected status code
// or the timeout elapses. Polls are not recorded as checks.
func (r *Runner) waitForService(ctx context.Context, baseURL string, cfg *WaitForConfig) error {
	if cfg == nil || cfg.Timeout <= 0 {
		return nil
	}

	url := http.JoinURL(baseURL, cfg.Endpoint)
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	status := cfg.Status
	if status == 0 {
		status = 200
	}

	r.listener.Note(fmt.Sprintf("Waiting for %s to return %d (timeout: %v)", url, status, cfg.Timeout))

	deadline := time.Now().Add(cfg.Timeout)
	var lastErr error
	var lastStatus int

	for time.Now().Before(deadline) {
		resp, err := r.client.DoContext(ctx, http.NewRequest("GET", url))
		if err == nil {
			lastStatus = resp.StatusCode
			if resp.StatusCode == status {
				r.listener.Note(fmt.Sprintf("Service %s is ready", url))
				return nil
			}
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	if lastErr != nil && lastStatus == 0 {
		return fmt.Errorf("service %s not ready after %v: %w", url, cfg.Timeout, lastErr)
	}
	return fmt.Errorf("service %s not ready after %v: got status %d, expected %d",
		url, cfg.Timeout, lastStatus, status)
}
