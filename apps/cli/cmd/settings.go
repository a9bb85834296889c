package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/config"
	"github.com/abdul-hamid-achik/authprobe/packages/core/env"
	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/spf13/cobra"
)

// settingsFlags are the flags that override configuration values. Only
// flags the user actually set take part in the merge.
type settingsFlags struct {
	configFile     string
	envFile        string
	baseURL        string
	password       string
	timeout        time.Duration
	startupDelay   time.Duration
	proxy          string
	insecure       bool
	rateLimit      float64
	strictEnvelope bool
	waitFor        string
	waitTimeout    time.Duration
	headers        []string
	tags           string
	output         string
	outputFile     string
	history        string
	metricsFile    string
	pushgateway    string
	verbose        bool
	noColor        bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "Path to config file (default: ./authprobe.yaml if present)")
	fs.StringVar(&f.envFile, "env-file", "", "Path to .env file for variable interpolation (env: AUTHPROBE_ENV_FILE)")
	fs.StringVarP(&f.baseURL, "base-url", "u", "", "Base URL of the auth API (env: AUTHPROBE_BASE_URL)")
	fs.StringVar(&f.password, "password", "", "Password for the generated test user (env: AUTHPROBE_PASSWORD)")
	fs.DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "Per-request timeout (env: AUTHPROBE_TIMEOUT)")
	fs.DurationVar(&f.startupDelay, "startup-delay", config.DefaultStartupDelay, "Delay before the first request (env: AUTHPROBE_STARTUP_DELAY)")
	fs.StringVar(&f.proxy, "proxy", "", "Proxy URL for HTTP requests (env: AUTHPROBE_PROXY)")
	fs.BoolVarP(&f.insecure, "insecure", "k", false, "Disable TLS certificate validation")
	fs.Float64Var(&f.rateLimit, "rate-limit", 0, "Maximum requests per second, 0 for unlimited (env: AUTHPROBE_RATE_LIMIT)")
	fs.BoolVar(&f.strictEnvelope, "strict-envelope", false, "Fail checks whose JSON body is not a {success,message,data} envelope")
	fs.StringVar(&f.waitFor, "wait-for", "", "Poll this endpoint until it answers 200 before running")
	fs.DurationVar(&f.waitTimeout, "wait-timeout", 30*time.Second, "How long --wait-for keeps polling")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "Extra request header as 'Name: value' (repeatable)")
	fs.StringVarP(&f.tags, "tags", "t", "", "Run only checks with these tags, comma-separated (env: AUTHPROBE_TAGS)")
	fs.StringVarP(&f.output, "output", "o", "", "Output format: console, json, junit, tap, html (env: AUTHPROBE_OUTPUT)")
	fs.StringVar(&f.outputFile, "output-file", "", "Write the report to a file instead of stdout (env: AUTHPROBE_OUTPUT_FILE)")
	fs.StringVar(&f.history, "history", "", "Record runs in sqlite:<path> or postgres://... (env: AUTHPROBE_HISTORY)")
	fs.StringVar(&f.metricsFile, "metrics-textfile", "", "Write Prometheus metrics for the node_exporter textfile collector (env: AUTHPROBE_METRICS_TEXTFILE)")
	fs.StringVar(&f.pushgateway, "pushgateway", "", "Push Prometheus metrics to this Pushgateway URL (env: AUTHPROBE_PUSHGATEWAY)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Show latency percentiles and timing")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output (env: AUTHPROBE_NO_COLOR)")
}

// overrides turns the flags the user set into a partial config.
func (f *settingsFlags) overrides(cmd *cobra.Command) (*config.Config, error) {
	changed := cmd.Flags().Changed
	c := &config.Config{}

	if changed("base-url") {
		c.BaseURL = f.baseURL
	}
	if changed("password") {
		c.Password = f.password
	}
	if changed("timeout") {
		c.Timeout = f.timeout
	}
	if changed("startup-delay") {
		c.StartupDelay = config.DurationPtr(f.startupDelay)
	}
	if changed("proxy") {
		c.Proxy = f.proxy
	}
	if changed("insecure") {
		c.ValidateSSL = config.BoolPtr(!f.insecure)
	}
	if changed("rate-limit") {
		c.RateLimit = f.rateLimit
	}
	if changed("strict-envelope") {
		c.StrictEnvelope = config.BoolPtr(f.strictEnvelope)
	}
	if changed("wait-for") {
		c.WaitFor = &config.WaitFor{Endpoint: f.waitFor, Timeout: f.waitTimeout}
	}
	if changed("tags") {
		c.Tags = config.SplitList(f.tags)
	}
	if changed("output") {
		c.Output = strings.ToLower(f.output)
	}
	if changed("output-file") {
		c.OutputFile = f.outputFile
	}
	if changed("history") {
		c.History = f.history
	}
	if changed("metrics-textfile") || changed("pushgateway") {
		c.Metrics = &config.Metrics{Textfile: f.metricsFile, Pushgateway: f.pushgateway}
	}
	if changed("verbose") {
		c.Verbose = config.BoolPtr(f.verbose)
	}
	if changed("no-color") {
		c.NoColor = config.BoolPtr(f.noColor)
	}

	if len(f.headers) > 0 {
		c.Headers = make(map[string]string, len(f.headers))
		for _, h := range f.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", h)
			}
			c.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	return c, nil
}

// settings is the effective configuration of one invocation.
type settings struct {
	*config.Config
	configPath string
	envPath    string
}

// loadSettings layers defaults, the config file, AUTHPROBE_* variables and
// flags, then resolves placeholders and validates the result.
func loadSettings(cmd *cobra.Command, f *settingsFlags) (*settings, error) {
	configPath := f.configFile
	if configPath == "" {
		found, err := config.FindConfigFile(".")
		if err != nil && !errors.Is(err, config.ErrNotFound) {
			return nil, withExitCode(ExitConfigError, err)
		}
		configPath = found
	}

	base := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		base = loaded
	}

	envPath := f.envFile
	if envPath == "" {
		envPath = os.Getenv(env.Prefix + "ENV_FILE")
	}
	if envPath == "" {
		envPath = base.EnvFile
	}

	var dotenv map[string]string
	if envPath != "" {
		vars, err := env.LoadAndExportDotEnv(envPath)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		dotenv = vars
	}

	fromEnv, err := config.FromEnv(env.LoadSystemEnv(env.Prefix))
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	fromFlags, err := f.overrides(cmd)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}

	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
	})
	resolver.SetVariables(dotenv)

	cfg := base.Merge(fromEnv).Merge(fromFlags).Resolve(resolver)
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	return &settings{Config: cfg, configPath: configPath, envPath: envPath}, nil
}

// runnerConfig maps the effective settings onto the runner.
func runnerConfig(cfg *config.Config, listener runner.Listener) *runner.Config {
	rc := &runner.Config{
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		FollowRedirect: cfg.GetFollowRedirects(),
		Insecure:       !cfg.GetValidateSSL(),
		Proxy:          cfg.Proxy,
		DefaultHeaders: cfg.Headers,
		RateLimit:      cfg.RateLimit,
		StrictEnvelope: cfg.GetStrictEnvelope(),
		StartupDelay:   cfg.GetStartupDelay(),
		Listener:       listener,
	}
	if w := cfg.WaitFor; w != nil {
		rc.WaitFor = &runner.WaitForConfig{
			Endpoint: w.Endpoint,
			Status:   w.Status,
			Timeout:  w.Timeout,
			Interval: w.Interval,
		}
	}
	return rc
}
