// Package config loads the quipdoc CLI configuration from an HCL file.
//
// Example configuration:
//
//	log_level = "info"
//
//	quip {
//	  base_url     = "https://platform.quip.com"
//	  access_token = env("QUIP_ACCESS_TOKEN")
//	  timeout      = "30s"
//	  max_retries  = 3
//	  retry_delay  = "1s"
//	}
//
// QUIP_ACCESS_TOKEN and QUIP_BASE_URL override the file when set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hashicorp-forge/quipdoc/pkg/workspace/adapters/api"
)

const (
	// EnvAccessToken overrides quip.access_token.
	EnvAccessToken = "QUIP_ACCESS_TOKEN"

	// EnvBaseURL overrides quip.base_url.
	EnvBaseURL = "QUIP_BASE_URL"
)

// Config is the root of the configuration file.
type Config struct {
	// LogLevel is one of trace, debug, info, warn, error, off.
	LogLevel string `hcl:"log_level,optional"`

	// Quip configures the REST client.
	Quip *Quip `hcl:"quip,block"`
}

// Quip is the quip block. Durations are Go duration strings.
type Quip struct {
	BaseURL     string `hcl:"base_url,optional"`
	AccessToken string `hcl:"access_token,optional"`
	Timeout     string `hcl:"timeout,optional"`
	MaxRetries  *int   `hcl:"max_retries,optional"`
	RetryDelay  string `hcl:"retry_delay,optional"`
	TLSVerify   *bool  `hcl:"tls_verify,optional"`
	Debug       bool   `hcl:"debug,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Quip:     &Quip{},
	}
}

// DefaultPath returns the per-user configuration file location, or "" when
// the platform has no user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "quipdoc", "config.hcl")
}

// Load reads the configuration at path from fs and applies environment
// overrides. An empty path yields Default with overrides applied.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		src, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %q: %w", path, err)
		}
		if err := hclsimple.Decode(path, src, evalContext(), cfg); err != nil {
			return nil, fmt.Errorf("error decoding config file %q: %w", path, err)
		}
		if cfg.LogLevel == "" {
			cfg.LogLevel = Default().LogLevel
		}
		if cfg.Quip == nil {
			cfg.Quip = &Quip{}
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// evalContext exposes env("NAME") to configuration files.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": function.New(&function.Spec{
				Params: []function.Parameter{{Name: "name", Type: cty.String}},
				Type:   function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
					return cty.StringVal(os.Getenv(args[0].AsString())), nil
				},
			}),
		},
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAccessToken); ok && v != "" {
		c.Quip.AccessToken = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Quip.BaseURL = v
	}
}

// Validate reports every problem in the file at once. The access token is
// not required here so commands that never reach the service still run.
func (c *Config) Validate() error {
	var result *multierror.Error

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if c.Quip != nil {
		for name, value := range map[string]string{
			"quip.timeout":     c.Quip.Timeout,
			"quip.retry_delay": c.Quip.RetryDelay,
		} {
			if _, err := parseDuration(value); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			}
		}
		if c.Quip.MaxRetries != nil && *c.Quip.MaxRetries < 0 {
			result = multierror.Append(result, fmt.Errorf("quip.max_retries: must be non-negative, got %d", *c.Quip.MaxRetries))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// API converts the quip block into a REST client configuration, filling
// unset values from api.DefaultConfig.
func (c *Config) API() (*api.Config, error) {
	out := api.DefaultConfig()
	q := c.Quip
	if q == nil {
		return out, nil
	}

	if q.BaseURL != "" {
		out.BaseURL = q.BaseURL
	}
	out.AccessToken = q.AccessToken
	if q.TLSVerify != nil {
		out.TLSVerify = q.TLSVerify
	}
	if q.MaxRetries != nil {
		out.MaxRetries = *q.MaxRetries
	}
	out.Debug = q.Debug

	if d, err := parseDuration(q.Timeout); err != nil {
		return nil, fmt.Errorf("quip.timeout: %w", err)
	} else if d > 0 {
		out.Timeout = d
	}
	if d, err := parseDuration(q.RetryDelay); err != nil {
		return nil, fmt.Errorf("quip.retry_delay: %w", err)
	} else if d > 0 {
		out.RetryDelay = d
	}

	return out, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative, got %s", s)
	}
	return d, nil
}
