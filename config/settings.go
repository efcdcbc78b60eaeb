package config

import (
	"fmt"
	"time"

	"github.com/Norconex/commons-lang-sub007/logger"
	"github.com/Norconex/commons-lang-sub007/resilience"
	"github.com/Norconex/commons-lang-sub007/validation"
)

// Config is the library's full configuration.
type Config struct {
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
	Exec    ExecSettings  `yaml:"exec" mapstructure:"exec"`
	Retry   RetrySettings `yaml:"retry" mapstructure:"retry"`
}

// ExecSettings configures command execution defaults.
type ExecSettings struct {
	// WorkDir is the default working directory for commands. Empty means
	// the current directory.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
	// Env is extra environment variables merged over the parent
	// environment for every command.
	Env map[string]string `yaml:"env" mapstructure:"env"`
}

// RetrySettings configures retry defaults for command execution.
type RetrySettings struct {
	// MaxRetries is how many times a failed execution is retried.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"min=0"`
	// Delay is the base wait between attempts.
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64 `yaml:"backoff_factor" mapstructure:"backoff_factor"`
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	// Jitter randomizes each delay by up to the given fraction.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter" validate:"gte=0,lte=1"`
	// MaxCauses is how many recent failures the terminal error retains.
	MaxCauses int `yaml:"max_causes" mapstructure:"max_causes" validate:"min=0"`
	// RetryOnNonZeroExit treats non-zero exit codes as retryable failures.
	RetryOnNonZeroExit bool `yaml:"retry_on_non_zero_exit" mapstructure:"retry_on_non_zero_exit"`
}

// RetryConfig converts the settings into a resilience configuration.
func (s RetrySettings) RetryConfig() resilience.Config {
	return resilience.Config{
		MaxRetries:    s.MaxRetries,
		Delay:         s.Delay,
		BackoffFactor: s.BackoffFactor,
		MaxDelay:      s.MaxDelay,
		Jitter:        s.Jitter,
		MaxCauses:     s.MaxCauses,
	}
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = resilience.DefaultMaxRetries
	}
	if c.Retry.MaxCauses == 0 {
		c.Retry.MaxCauses = resilience.DefaultMaxCauses
	}
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := validation.Struct(c.Retry); err != nil {
		return fmt.Errorf("config.retry: %w", err)
	}
	if v := validation.New().
		Custom(c.Retry.Delay >= 0, "retry.delay", "must not be negative").
		Custom(c.Retry.MaxDelay >= 0, "retry.max_delay", "must not be negative").
		Validate(); v != nil {
		return fmt.Errorf("config.retry: %w", v)
	}
	return nil
}

// Load reads configuration from the standard file locations and the
// environment, then defaults and validates it.
func Load(name string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(name, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
