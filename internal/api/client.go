// Package api is the HTTP client for the contacts backend.
//
// The client is stateless with respect to credentials: every call takes the
// bearer token it should present, and the session layer decides which token
// that is. Failures are classified into domain error codes; the HTTP status
// and server detail stay available through *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"addressbook/internal/platform/metrics"
	"addressbook/internal/platform/tracer"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/circuit"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "addressbook-cli"
	maxResponseBytes = 1 << 20
)

// ErrCircuitOpen is wrapped into the transport error returned while the
// breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	UserAgent  string
}

// Client issues requests against the backend REST API.
type Client struct {
	baseURL   string
	userAgent string
	http      HTTPDoer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	breaker   *circuit.Breaker
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithBreaker replaces the default breaker. Passing nil disables it.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "api url must be absolute, e.g. http://localhost:8000/api/v1")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	c := &Client{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		http:      selectHTTPClient(cfg),
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
		breaker:   circuit.New("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func selectHTTPClient(cfg Config) HTTPDoer {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return &http.Client{Timeout: cfg.Timeout}
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one request. Overrides remap status codes to endpoint
// specific error codes (e.g. 401 on login means bad credentials).
type call struct {
	endpoint  string
	method    string
	path      string
	query     url.Values
	bearer    string
	body      any
	form      url.Values
	out       any
	overrides map[int]dErrors.Code
}

func (c *Client) do(ctx context.Context, r call) (err error) {
	start := time.Now()
	outcome := "ok"
	ctx, span := c.tracer.Start(ctx, tracer.SpanAPICall,
		tracer.String(tracer.AttrEndpoint, r.endpoint),
		tracer.String(tracer.AttrMethod, r.method),
	)
	defer func() {
		if err != nil && outcome == "ok" {
			outcome = string(dErrors.CodeOf(err))
		}
		c.metrics.ObserveRequest(r.endpoint, outcome, time.Since(start).Seconds())
		span.End(err)
	}()

	if c.breaker != nil && !c.breaker.Allow() {
		outcome = "circuit_open"
		span.SetAttributes(tracer.Bool(tracer.AttrCircuitOpen, true))
		return dErrors.Wrap(ErrCircuitOpen, dErrors.CodeTransport, "server unreachable, try again later")
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "transport"
		if ctx.Err() == nil {
			c.recordBreakerFailure()
		}
		c.logger.DebugContext(ctx, "api request failed", "endpoint", r.endpoint, "error", err)
		return dErrors.Wrap(err, dErrors.CodeTransport, "no response from server")
	}
	defer resp.Body.Close()

	span.SetAttributes(tracer.Int64(tracer.AttrStatusCode, int64(resp.StatusCode)))
	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordBreakerFailure()
	} else if c.breaker != nil {
		if change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "api circuit closed", "breaker", c.breaker.Name())
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome = "transport"
		return dErrors.Wrap(err, dErrors.CodeTransport, "failed to read response")
	}

	c.logger.DebugContext(ctx, "api request completed",
		"endpoint", r.endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return classify(resp.StatusCode, body, r.overrides)
	}
	if r.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, r.out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode response")
	}
	return nil
}

func (c *Client) recordBreakerFailure() {
	if c.breaker == nil {
		return
	}
	if change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("api circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) newRequest(ctx context.Context, r call) (*http.Request, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode request")
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}
	return req, nil
}
