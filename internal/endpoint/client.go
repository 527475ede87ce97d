// Package endpoint talks to a remote SPARQL endpoint over the SPARQL 1.1
// Protocol and resolves class instances for template instantiation.
package endpoint

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultURL is the endpoint used when none is configured.
	DefaultURL = "http://de.dbpedia.org/sparql"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies csgen to endpoint operators.
	DefaultUserAgent = "csgen/1.0"

	resultsMediaType = "application/sparql-results+json"

	// maxErrorBodySize limits how much of an error response is kept.
	maxErrorBodySize = 4096
)

// Config describes how to reach an endpoint.
type Config struct {
	URL       string        `koanf:"url"`
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
	Method    string        `koanf:"method"` // GET or POST
}

// DefaultConfig returns the default endpoint configuration.
func DefaultConfig() Config {
	return Config{
		URL:       DefaultURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Method:    http.MethodGet,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("endpoint url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint url %q: scheme must be http or https", c.URL)
	}
	switch strings.ToUpper(c.Method) {
	case "", http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("endpoint method %q: must be GET or POST", c.Method)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("endpoint timeout %s: must not be negative", c.Timeout)
	}
	return nil
}

// Client executes SELECT queries against one endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. The configured timeout is not
// applied to a replaced client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client for cfg.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Select runs a SELECT query and decodes the JSON results. An empty result
// set is not an error. Every failure is a *ResolutionError.
//
// The request is built here rather than through sparql.Repo.Query: Repo
// sends every query as a POST without the caller's context, and reports a
// non-2xx answer only as formatted text.
func (c *Client) Select(ctx context.Context, query string) (*Results, error) {
	req, err := c.newRequest(ctx, query)
	if err != nil {
		return nil, c.fail(ErrCodeTransport, "create request", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ErrCodeTransport, "execute request", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("sparql query",
		"endpoint", c.cfg.URL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"query", query)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &ResolutionError{
			Code:       ErrCodeStatus,
			Message:    fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Endpoint:   c.cfg.URL,
			StatusCode: resp.StatusCode,
		}
	}

	results, err := decodeResults(resp.Body)
	if err != nil {
		return nil, c.fail(ErrCodeDecode, "decode results", err)
	}
	return results, nil
}

func (c *Client) newRequest(ctx context.Context, query string) (*http.Request, error) {
	form := url.Values{"query": {query}}

	var req *http.Request
	var err error
	if strings.EqualFold(c.cfg.Method, http.MethodPost) {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		u, perr := url.Parse(c.cfg.URL)
		if perr != nil {
			return nil, perr
		}
		q := u.Query()
		q.Set("query", query)
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	return req, nil
}

func (c *Client) fail(code ResolutionErrorCode, msg string, err error) *ResolutionError {
	return &ResolutionError{Code: code, Message: msg, Endpoint: c.cfg.URL, Err: err}
}
