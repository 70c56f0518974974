package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// Provider implements workspace.Service against the Quip REST API.
type Provider struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// Compile-time checks
var (
	_ workspace.Service         = (*Provider)(nil)
	_ workspace.Collaborator    = (*Provider)(nil)
	_ workspace.BodyFetcher     = (*Provider)(nil)
	_ workspace.LocationEditor  = (*Provider)(nil)
	_ workspace.TableEditor     = (*Provider)(nil)
	_ workspace.MessagePoster   = (*Provider)(nil)
	_ workspace.DocumentCreator = (*Provider)(nil)
)

// NewProvider creates a new Quip REST provider. A nil logger disables
// logging.
func NewProvider(cfg *Config, logger hclog.Logger) (*Provider, error) {
	// Apply defaults
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = defaults.TLSVerify
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Quip API config: %w", err)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Provider{
		config: cfg,
		client: cfg.NewHTTPClient(context.Background()),
		logger: logger.Named("quip-api"),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "quip"
}

// apiError is the error body returned by the service.
type apiError struct {
	Error            string `json:"error"`
	ErrorCode        int    `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

// statusError is a non-2xx response. It is converted into the docerr
// taxonomy once retries are exhausted.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, strings.TrimSpace(string(e.body)))
}

// doRequest sends a GET (form == nil) or a form-encoded POST and decodes the
// JSON response into result. documentID is used only to build not-found
// errors.
func (p *Provider) doRequest(ctx context.Context, op, path, documentID string, form url.Values, result any) error {
	endpoint := p.config.BaseURL + path
	method := http.MethodGet
	if form != nil {
		method = http.MethodPost
	}

	var respBody []byte
	attempt := 0
	operation := func() error {
		attempt++
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		start := time.Now()
		resp, err := p.client.Do(req)
		if err != nil {
			if ctx.Err() != nil || method != http.MethodGet {
				return backoff.Permanent(err)
			}
			p.logger.Debug("request failed, retrying", "op", op, "attempt", attempt, "error", err)
			return err
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response: %w", err))
		}

		p.logger.Debug("round trip",
			"op", op,
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"attempt", attempt,
			"duration", time.Since(start),
		)
		if p.config.Debug {
			p.logger.Debug("response body", "op", op, "body", string(respBody))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := &statusError{status: resp.StatusCode, body: respBody}
			if resp.StatusCode >= 500 && method == http.MethodGet {
				return serr
			}
			return backoff.Permanent(serr)
		}
		return nil
	}

	var policy backoff.BackOff = backoff.WithMaxRetries(p.newBackOff(), uint64(p.config.MaxRetries))
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return p.classify(op, documentID, err)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &docerr.TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return nil
}

func (p *Provider) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.RetryDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// classify maps a request failure onto the docerr taxonomy.
func (p *Provider) classify(op, documentID string, err error) error {
	var serr *statusError
	if !errors.As(err, &serr) {
		return &docerr.TransportError{Op: op, Err: err}
	}

	switch {
	case serr.status == http.StatusNotFound && documentID != "":
		return docerr.DocumentNotFound(documentID)
	case serr.status == http.StatusUnauthorized, serr.status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, docerr.ErrUnauthorized)
	case serr.status >= 500:
		return &docerr.TransportError{Op: op, Err: fmt.Errorf("server error (%w)", serr)}
	}

	rejected := &docerr.RemoteRejectedError{
		Op:         op,
		StatusCode: serr.status,
		Code:       serr.status,
		Message:    strings.TrimSpace(string(serr.body)),
	}
	var body apiError
	if json.Unmarshal(serr.body, &body) == nil {
		if body.ErrorCode != 0 {
			rejected.Code = body.ErrorCode
		}
		switch {
		case body.ErrorDescription != "":
			rejected.Message = body.ErrorDescription
		case body.Error != "":
			rejected.Message = body.Error
		}
	}
	return rejected
}
