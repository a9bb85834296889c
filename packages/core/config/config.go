package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/env"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the authprobe configuration
type Config struct {
	BaseURL         string            `yaml:"baseURL,omitempty" validate:"required,url"`
	Timeout         time.Duration     `yaml:"timeout,omitempty" validate:"gte=0"`
	Password        string            `yaml:"password,omitempty" validate:"required"`
	StartupDelay    *time.Duration    `yaml:"startupDelay,omitempty"`
	FollowRedirects *bool             `yaml:"followRedirects,omitempty"`
	ValidateSSL     *bool             `yaml:"validateSSL,omitempty"`
	Proxy           string            `yaml:"proxy,omitempty" validate:"omitempty,url"`
	Headers         map[string]string `yaml:"headers,omitempty"`
	RateLimit       float64           `yaml:"rateLimit,omitempty" validate:"gte=0"`
	StrictEnvelope  *bool             `yaml:"strictEnvelope,omitempty"`
	WaitFor         *WaitFor          `yaml:"waitFor,omitempty"`
	Tags            []string          `yaml:"tags,omitempty"`
	Output          string            `yaml:"output,omitempty" validate:"omitempty,oneof=console json junit tap html"`
	OutputFile      string            `yaml:"outputFile,omitempty"`
	EnvFile         string            `yaml:"envFile,omitempty"`
	History         string            `yaml:"history,omitempty"`
	Notify          *Notify           `yaml:"notify,omitempty"`
	Metrics         *Metrics          `yaml:"metrics,omitempty"`
	Vars            map[string]string `yaml:"vars,omitempty"`
	Verbose         *bool             `yaml:"verbose,omitempty"`
	NoColor         *bool             `yaml:"noColor,omitempty"`
}

// WaitFor polls an endpoint before the first check.
type WaitFor struct {
	Endpoint string        `yaml:"endpoint" validate:"required"`
	Status   int           `yaml:"status,omitempty" validate:"omitempty,gte=100,lte=599"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	Interval time.Duration `yaml:"interval,omitempty" validate:"gte=0"`
}

type Notify struct {
	On    string `yaml:"on,omitempty" validate:"omitempty,oneof=always failure success recovery"`
	Slack *Slack `yaml:"slack,omitempty"`
	Teams *Teams `yaml:"teams,omitempty"`
}

type Slack struct {
	Webhook string `yaml:"webhook" validate:"required,url"`
	Channel string `yaml:"channel,omitempty"`
}

type Teams struct {
	Webhook string `yaml:"webhook" validate:"required,url"`
}

// Metrics selects where run metrics are exported.
type Metrics struct {
	Textfile    string   `yaml:"textfile,omitempty"`
	Pushgateway string   `yaml:"pushgateway,omitempty" validate:"omitempty,url"`
	Job         string   `yaml:"job,omitempty"`
	Datadog     *Datadog `yaml:"datadog,omitempty"`
}

type Datadog struct {
	APIKey string   `yaml:"apiKey,omitempty"`
	Site   string   `yaml:"site,omitempty"`
	Tags   []string `yaml:"tags,omitempty"`
}

// BoolPtr is a convenience for setting optional flags
func BoolPtr(b bool) *bool {
	return &b
}

// DurationPtr is a convenience for setting optional durations
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

func (c *Config) GetStrictEnvelope() bool {
	return getBool(c.StrictEnvelope, false)
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetStartupDelay returns the startup delay, defaulting to DefaultStartupDelay
func (c *Config) GetStartupDelay() time.Duration {
	if c.StartupDelay == nil {
		return DefaultStartupDelay
	}
	return *c.StartupDelay
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	"authprobe.yaml",
	".authprobe.yaml",
	"authprobe.yml",
	"authprobe.json",
}

// ErrNotFound is returned by FindConfigFile when no config file exists
var ErrNotFound = errors.New("no config file found")

// LoadConfig loads configuration from the specified path or searches for
// config files in the current directory. The result is merged over defaults.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	found, err := FindConfigFile(".")
	if errors.Is(err, ErrNotFound) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return loadConfigFromFile(found)
}

// FindConfigFile returns the first of ConfigFilenames present in dir.
func FindConfigFile(dir string) (string, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}
	return "", ErrNotFound
}

// loadConfigFromFile reads YAML or JSON. JSON is decoded by the YAML parser.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}

	return DefaultConfig().Merge(&fileConfig), nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Password != "" {
		result.Password = other.Password
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.OutputFile != "" {
		result.OutputFile = other.OutputFile
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.History != "" {
		result.History = other.History
	}
	if len(other.Tags) > 0 {
		result.Tags = other.Tags
	}
	if other.WaitFor != nil {
		result.WaitFor = other.WaitFor
	}
	if other.Notify != nil {
		result.Notify = other.Notify
	}
	if other.Metrics != nil {
		result.Metrics = other.Metrics
	}

	// Pointer fields only override when explicitly set in other
	if other.StartupDelay != nil {
		result.StartupDelay = other.StartupDelay
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.StrictEnvelope != nil {
		result.StrictEnvelope = other.StrictEnvelope
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	result.Headers = mergeMaps(c.Headers, other.Headers)
	result.Vars = mergeMaps(c.Vars, other.Vars)

	return &result
}

func mergeMaps(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// FromEnv builds a partial config from AUTHPROBE_* style variables, keyed
// without the prefix (see env.LoadSystemEnv).
func FromEnv(vars map[string]string) (*Config, error) {
	c := &Config{}
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := vars[key]; ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string) *time.Duration {
		v, ok := vars[key]
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", env.Prefix, key, err))
			return nil
		}
		return &d
	}
	boolean := func(key string) *bool {
		v, ok := vars[key]
		if !ok || v == "" {
			return nil
		}
		b := v == "true" || v == "1" || v == "yes"
		return &b
	}

	str("BASE_URL", &c.BaseURL)
	str("PASSWORD", &c.Password)
	str("PROXY", &c.Proxy)
	str("OUTPUT", &c.Output)
	str("OUTPUT_FILE", &c.OutputFile)
	str("ENV_FILE", &c.EnvFile)
	str("HISTORY", &c.History)

	if d := dur("TIMEOUT"); d != nil {
		c.Timeout = *d
	}
	c.StartupDelay = dur("STARTUP_DELAY")
	c.StrictEnvelope = boolean("STRICT_ENVELOPE")
	c.ValidateSSL = boolean("VALIDATE_SSL")
	c.Verbose = boolean("VERBOSE")
	c.NoColor = boolean("NO_COLOR")

	if v, ok := vars["RATE_LIMIT"]; ok && v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRATE_LIMIT: %w", env.Prefix, err))
		} else {
			c.RateLimit = rate
		}
	}
	if v, ok := vars["TAGS"]; ok && v != "" {
		c.Tags = SplitList(v)
	}
	if v, ok := vars["SLACK_WEBHOOK"]; ok && v != "" {
		c.Notify = &Notify{Slack: &Slack{Webhook: v, Channel: vars["SLACK_CHANNEL"]}}
	}
	if v, ok := vars["TEAMS_WEBHOOK"]; ok && v != "" {
		if c.Notify == nil {
			c.Notify = &Notify{}
		}
		c.Notify.Teams = &Teams{Webhook: v}
	}
	if v, ok := vars["NOTIFY_ON"]; ok && v != "" && c.Notify != nil {
		c.Notify.On = v
	}

	var m Metrics
	str("METRICS_TEXTFILE", &m.Textfile)
	str("PUSHGATEWAY", &m.Pushgateway)
	str("METRICS_JOB", &m.Job)
	if v, ok := vars["DATADOG_API_KEY"]; ok && v != "" {
		m.Datadog = &Datadog{APIKey: v, Site: vars["DATADOG_SITE"], Tags: SplitList(vars["DATADOG_TAGS"])}
	}
	if m != (Metrics{}) {
		c.Metrics = &m
	}

	return c, errors.Join(errs...)
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Resolve expands {{...}} placeholders in string settings. Vars from the
// config are made available to the resolver first.
func (c *Config) Resolve(r *env.Resolver) *Config {
	r.SetVariables(c.Vars)

	result := *c
	result.BaseURL = r.Resolve(c.BaseURL)
	result.Password = r.Resolve(c.Password)
	result.Proxy = r.Resolve(c.Proxy)
	result.History = r.Resolve(c.History)
	result.Headers = r.ResolveAll(c.Headers)
	if c.Notify != nil {
		n := *c.Notify
		if c.Notify.Slack != nil {
			slack := *c.Notify.Slack
			slack.Webhook = r.Resolve(slack.Webhook)
			n.Slack = &slack
		}
		if c.Notify.Teams != nil {
			teams := *c.Notify.Teams
			teams.Webhook = r.Resolve(teams.Webhook)
			n.Teams = &teams
		}
		result.Notify = &n
	}
	if c.Metrics != nil {
		m := *c.Metrics
		m.Textfile = r.Resolve(m.Textfile)
		m.Pushgateway = r.Resolve(m.Pushgateway)
		if c.Metrics.Datadog != nil {
			dd := *c.Metrics.Datadog
			dd.APIKey = r.Resolve(dd.APIKey)
			m.Datadog = &dd
		}
		result.Metrics = &m
	}
	return &result
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config and reports every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SaveConfig writes the configuration as YAML
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
