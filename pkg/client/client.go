package client

import (
	"bytes"
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
	log "github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
)

const (
	defaultTimeout         = 15 * time.Second
	defaultMaxRetries      = 5
	defaultMaxElapsed      = 30 * time.Second
	defaultInitialInterval = 200 * time.Millisecond
)

// Client talks to the gateway admin REST API.
type Client struct {
	baseURL         *url.URL
	http            *http.Client
	token           string
	maxRetries      uint64
	maxElapsed      time.Duration
	initialInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRetry bounds retries of idempotent requests.
func WithRetry(maxRetries int, maxElapsed time.Duration) Option {
	return func(c *Client) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		c.maxRetries = uint64(maxRetries)
		c.maxElapsed = maxElapsed
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) {
		c.initialInterval = d
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:         u,
		http:            &http.Client{Timeout: defaultTimeout},
		maxRetries:      defaultMaxRetries,
		maxElapsed:      defaultMaxElapsed,
		initialInterval: defaultInitialInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a Client whose timeout and retry budget come from cfg.
func NewFromConfig(baseURL, token string, cfg *config.GatewayConfig, opts ...Option) (*Client, error) {
	base := []Option{
		WithToken(token),
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithRetry(cfg.ClientMaxRetries, cfg.ClientMaxElapsed()),
	}
	return New(baseURL, append(base, opts...)...)
}

// idempotent reports whether a request may be repeated safely. POST never is.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxElapsedTime = c.maxElapsed
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}

type request struct {
	method string
	path   string
	query  url.Values
	in     interface{}
	out    interface{}
	// errOut, when set, receives the decoded body of a non-2xx answer
	errOut interface{}
}

// do sends r and decodes a JSON response into r.out. Idempotent requests
// are retried with exponential backoff on TransientError; every other error
// is returned as is.
func (c *Client) do(ctx context.Context, r request) error {
	var payload []byte
	if r.in != nil {
		var err error
		if payload, err = json.Marshal(r.in); err != nil {
			return err
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.send(ctx, r, payload)
		if err == nil {
			return nil
		}
		if !idempotent(r.method) || !apierr.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		log.WithError(err).WithFields(log.Fields{
			"method":  r.method,
			"path":    r.path,
			"attempt": attempt,
		}).Debug("retrying request")
		return err
	}

	err := backoff.Retry(op, c.backOff(ctx))
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}

func (c *Client) send(ctx context.Context, r request, payload []byte) error {
	// r.path is already escaped
	rawPath := c.baseURL.EscapedPath() + r.path
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return err
	}
	u := *c.baseURL
	u.Path, u.RawPath = path, rawPath
	u.RawQuery = r.query.Encode()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &apierr.TransientError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apierr.TransientError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if r.errOut != nil {
			_ = json.Unmarshal(raw, r.errOut)
		}
		return apierr.FromStatus(resp.StatusCode, apierr.ExtractMessage(raw))
	}

	if r.out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, r.out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", r.method, r.path, err)
	}
	return nil
}
