package config

import "time"

const (
	DefaultBaseURL      = "http://localhost:8080/api"
	DefaultTimeout      = 10 * time.Second
	DefaultPassword     = "TestPass123!"
	DefaultStartupDelay = 2 * time.Second
	DefaultOutput       = "console"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		Timeout:         DefaultTimeout,
		Password:        DefaultPassword,
		StartupDelay:    DurationPtr(DefaultStartupDelay),
		FollowRedirects: BoolPtr(true),
		ValidateSSL:     BoolPtr(true),
		StrictEnvelope:  BoolPtr(false),
		Output:          DefaultOutput,
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.BaseURL == d.BaseURL &&
		c.Timeout == d.Timeout &&
		c.Password == d.Password &&
		c.GetStartupDelay() == d.GetStartupDelay() &&
		c.GetFollowRedirects() == d.GetFollowRedirects() &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.GetStrictEnvelope() == d.GetStrictEnvelope() &&
		c.Proxy == "" &&
		len(c.Headers) == 0 &&
		c.RateLimit == 0 &&
		c.WaitFor == nil &&
		len(c.Tags) == 0 &&
		c.Output == d.Output &&
		c.OutputFile == "" &&
		c.History == "" &&
		c.Notify == nil &&
		c.Metrics == nil &&
		len(c.Vars) == 0
}
