// Package config loads the corkboard CLI configuration from a YAML file,
// CORKBOARD_* environment variables and command-line flags.
package config

import (
	"time"

	"github.com/ambiyansyah-risyal/corkboard"
)

// Defaults applied before any file, environment or flag is read.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultBackoffUnit   = time.Second
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "console"
	DefaultMaxLogSizeMB  = 10
	DefaultMaxLogBackups = 3
	EnvPrefix            = "CORKBOARD"
	ConfigName           = "corkboard"
)

// Config is the CLI configuration. Exactly one authentication method must be
// given: a token, or a username and password.
type Config struct {
	Token    string `mapstructure:"token" yaml:"token,omitempty" validate:"required_without=Username,excluded_with=Username"`
	Username string `mapstructure:"username" yaml:"username,omitempty" validate:"required_with=Password"`
	Password string `mapstructure:"password" yaml:"password,omitempty" validate:"required_with=Username"`

	BaseURL     string        `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty" validate:"gt=0,lte=10m"`
	BackoffUnit time.Duration `mapstructure:"backoff_unit" yaml:"backoff_unit,omitempty" validate:"gt=0"`

	Log LogConfig `mapstructure:"log" yaml:"log,omitempty"`
}

// LogConfig defines configuration for CLI logging.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty" validate:"omitempty,loglevel"`
	Format     string `mapstructure:"format" yaml:"format,omitempty" validate:"omitempty,logformat"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb,omitempty" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups,omitempty" validate:"gte=0"`
}

// Authentication returns the configured authentication method.
func (c *Config) Authentication() corkboard.Authentication {
	if c.Token != "" {
		return corkboard.Token(c.Token)
	}
	return corkboard.Credentials{Username: c.Username, Password: c.Password}
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions() []corkboard.Option {
	opts := []corkboard.Option{
		corkboard.WithTimeout(c.Timeout),
		corkboard.WithBackoffUnit(c.BackoffUnit),
	}
	if c.BaseURL != "" {
		opts = append(opts, corkboard.WithBaseURL(c.BaseURL))
	}
	return opts
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = corkboard.Token(c.Token).String()
	}
	if c.Password != "" {
		c.Password = "REDACTED"
	}
	return c
}
