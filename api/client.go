package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is used when no upstream URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// Config configures the upstream client.
type Config struct {
	BaseURL string
	// Timeout bounds a single call. This layer adds no other timeout policy.
	Timeout time.Duration
	// Transport replaces the default HTTP transport, e.g. with the
	// development mock.
	Transport http.RoundTripper
	UserAgent string
}

// Client issues one upstream call per method. It never retries and never
// touches the query cache.
type Client struct {
	http *resty.Client
	log  logrus.FieldLogger
}

// NewClient builds a Client for cfg.
func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	rc := resty.New().
		SetBaseURL(base).
		SetRetryCount(0).
		SetLogger(log).
		SetHeader("Accept", "application/json")

	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.Transport != nil {
		rc.SetTransport(cfg.Transport)
	}
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{http: rc, log: log}
}

type idTokenKey struct{}

// WithIDToken returns a context whose upstream calls carry token as bearer
// credential.
func WithIDToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, idTokenKey{}, token)
}

// IDTokenFromContext returns the bearer credential attached by WithIDToken.
func IDTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(idTokenKey{}).(string)
	return token
}

type requestOption func(*resty.Request)

func withBody(body any) requestOption {
	return func(r *resty.Request) { r.SetBody(body) }
}

func withQuery(params map[string]string) requestOption {
	return func(r *resty.Request) {
		for k, v := range params {
			if v != "" {
				r.SetQueryParam(k, v)
			}
		}
	}
}

func withPath(name, value string) requestOption {
	return func(r *resty.Request) { r.SetPathParam(name, value) }
}

func withIdempotencyKey() requestOption {
	return func(r *resty.Request) { r.SetHeader("Idempotency-Key", uuid.NewString()) }
}

// do performs exactly one upstream call and returns the success body.
func (c *Client) do(ctx context.Context, op, method, path string, opts ...requestOption) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", uuid.NewString())
	if token := IDTokenFromContext(ctx); token != "" {
		req.SetAuthToken(token)
	}
	for _, opt := range opts {
		opt(req)
	}

	started := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": op, "method": method, "path": path}).
			WithError(err).Debug("upstream call failed")
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"op":         op,
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode(),
		"latency_ms": time.Since(started).Milliseconds(),
	}).Debug("upstream call completed")

	if !resp.IsSuccess() {
		return nil, newRequestError(op, resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}

func call[T any](ctx context.Context, c *Client, op, method, path string, opts ...requestOption) (T, error) {
	var out T

	body, err := c.do(ctx, op, method, path, opts...)
	if err != nil {
		return out, err
	}
	if len(body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("api: %s: decode response: %w", op, err)
	}
	return out, nil
}
