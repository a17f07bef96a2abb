package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-call identifier so server logs can be
// correlated with ours. Retries of the same call reuse the identifier.
const RequestIDHeader = "X-Request-ID"

// Client is a thin JSON client for the team services. It handles Bearer
// token authentication, request IDs, JSON marshaling, and retry with
// exponential backoff on HTTP 429 (and 5xx for idempotent methods).
type Client struct {
	service        string
	baseURL        string
	token          string
	httpClient     *http.Client
	maxRetries     uint64
	initialBackoff time.Duration
	log            *zap.SugaredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry sets how many times a retryable response is retried and the
// first backoff interval.
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialBackoff = initial
	}
}

// WithLogger attaches a logger used for retry diagnostics.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client for the named service rooted at baseURL
// (e.g., https://api.example.com). An empty token sends no Authorization
// header.
func NewClient(service, baseURL, token string, opts ...Option) *Client {
	c := &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries:     3,
		initialBackoff: time.Second,
		log:            zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in errors and logs.
func (c *Client) Service() string {
	return c.service
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body and unmarshals the
// JSON response.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// do builds the request, handles auth, retries and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	result any,
) error {
	url := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	requestID := uuid.NewString()

	operation := func() error {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(RequestIDHeader, requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("executing request %s %s: %w", method, path, err)
			if ctx.Err() != nil || !idempotent(method) {
				return backoff.Permanent(err)
			}
			return err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return backoff.Permanent(fmt.Errorf("reading response body: %w", readErr))
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return backoff.Permanent(&AuthError{
				Service: c.service,
				Message: fmt.Sprintf(
					"authentication failed (401): check your API token for %s",
					c.baseURL,
				),
			})
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{
				Service:    c.service,
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Body:       respBody,
			}
			if retryable(method, resp.StatusCode) {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent ||
			len(bytes.TrimSpace(respBody)) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return backoff.Permanent(fmt.Errorf(
				"unmarshaling response from %s %s: %w", method, path, err,
			))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.log.Debugw("retrying request",
			"service", c.service,
			"method", method,
			"path", path,
			"request_id", requestID,
			"wait", wait,
			"error", err,
		)
	}

	return backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx),
		notify,
	)
}

// retryable reports whether a status is worth retrying for method.
// Rate limiting is always retried; server errors only when the method is
// safe to repeat.
func retryable(method string, status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return idempotent(method)
	}
	return false
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodHead, http.MethodDelete:
		return true
	}
	return false
}
