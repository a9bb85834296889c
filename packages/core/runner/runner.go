package runner

import (
	"context"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/session"
	"github.com/abdul-hamid-achik/authprobe/packages/http"
)

const (
	// DefaultBaseURL is where the Tracker Pro backend listens by default
	DefaultBaseURL = "http://localhost:8080/api"
	// DefaultTimeout is the per-request timeout
	DefaultTimeout = 10 * time.Second
	// DefaultWaitInterval is the delay between readiness polls
	DefaultWaitInterval = 500 * time.Millisecond
)

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	FollowRedirect bool
	Insecure       bool
	Proxy          string
	DefaultHeaders map[string]string
	RateLimit      float64
	StrictEnvelope bool
	StartupDelay   time.Duration
	WaitFor        *WaitForConfig
	Listener       Listener
}

type Runner struct {
	client   *http.Client
	executor *Executor
	listener Listener
	config   *Config
}

// RunResult is everything a suite run produced.
type RunResult struct {
	Session  *session.Session
	Skipped  []SkipNotice
	Duration time.Duration
	Summary  Summary
}

// SkipNotice records a scenario whose precondition was not met.
type SkipNotice struct {
	Name   string
	Reason string
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{FollowRedirect: true}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	listener := cfg.Listener
	if listener == nil {
		listener = NopListener{}
	}

	clientOpts := []http.ClientOption{
		http.WithTimeout(cfg.Timeout),
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(!cfg.Insecure),
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.DefaultHeaders) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.DefaultHeaders))
	}
	client := http.NewClient(clientOpts...)

	return &Runner{
		client: client,
		executor: NewExecutor(client,
			WithListener(listener),
			WithRateLimit(cfg.RateLimit),
			WithStrictEnvelope(cfg.StrictEnvelope),
		),
		listener: listener,
		config:   cfg,
	}
}

// NewSession creates the session a suite run mutates.
func (r *Runner) NewSession() *session.Session {
	return session.New(r.config.BaseURL)
}

// Run executes the scenarios strictly in order against a fresh session.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *RunResult {
	return r.RunSession(ctx, r.NewSession(), scenarios)
}

// RunSession executes the scenarios strictly in order. A failed scenario never
// stops the run; each later scenario is still attempted.
func (r *Runner) RunSession(ctx context.Context, s *session.Session, scenarios []Scenario) *RunResult {
	start := time.Now()
	result := &RunResult{Session: s}

	r.listener.SuiteStarted(s.BaseURL)

	if r.config.StartupDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(r.config.StartupDelay):
		}
	}

	if err := r.waitForService(ctx, s.BaseURL, r.config.WaitFor); err != nil {
		r.listener.Note("warning: " + err.Error())
	}

	for _, sc := range scenarios {
		if sc.Precondition != nil {
			if reason := sc.Precondition(s); reason != "" {
				r.listener.ScenarioSkipped(sc.Name, reason)
				result.Skipped = append(result.Skipped, SkipNotice{Name: sc.Name, Reason: reason})
				continue
			}
		}
		sc.Action(ctx, r.executor, s)
	}

	result.Duration = time.Since(start)
	result.Summary = Summarize(s, len(result.Skipped), result.Duration)
	return result
}

// Executor exposes the request executor for ad-hoc checks.
func (r *Runner) Executor() *Executor {
	return r.executor
}
