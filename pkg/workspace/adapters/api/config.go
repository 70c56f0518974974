package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public Quip platform endpoint.
const DefaultBaseURL = "https://platform.quip.com"

// Config contains configuration for the Quip REST provider.
type Config struct {
	// BaseURL is the API root, without the /1 version prefix.
	// Example: "https://platform.quip.com"
	BaseURL string `json:"base_url"`

	// AccessToken is the personal or OAuth access token sent as a Bearer
	// token. Keep it in the environment rather than in files.
	AccessToken string `json:"-"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development against self-signed certs.
	TLSVerify *bool `json:"tls_verify,omitempty"`

	// Timeout for a single HTTP request.
	// Default: 30 seconds
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries for failed GET requests. Edits are never retried.
	// Default: 3
	MaxRetries int `json:"max_retries,omitempty"`

	// RetryDelay is the initial backoff interval between retries.
	// Default: 1 second
	RetryDelay time.Duration `json:"retry_delay,omitempty"`

	// Debug logs response bodies at debug level.
	Debug bool `json:"debug,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		BaseURL:    DefaultBaseURL,
		TLSVerify:  &tlsVerify,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.AccessToken, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Duration(0)).Exclusive()),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RetryDelay, validation.Min(time.Duration(0))),
	)
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// NewHTTPClient creates an HTTP client that authenticates every request with
// the configured access token.
func (c *Config) NewHTTPClient(ctx context.Context) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: c.AccessToken,
		TokenType:   "Bearer",
	})
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: transport}), source)
	client.Timeout = c.Timeout
	return client
}
