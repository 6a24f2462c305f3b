// Package ratchet is a client for the access-statistics service that stores
// raw access counts per document key.
package ratchet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fabiobatalha/processing/internal/access"
)

const (
	// BaseURL is the public access-statistics endpoint.
	BaseURL = "http://ratchet.scielo.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the default number of requests per second.
	RateLimit = 10.0
)

// Common errors returned by the access client.
var (
	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with ratchet")

	// ErrInvalidResponse indicates a payload that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from ratchet")

	// ErrAPIError indicates a non-2xx answer.
	ErrAPIError = errors.New("ratchet API error")
)

// envelope wraps the records returned for a key.
type envelope struct {
	Objects []json.RawMessage `json:"objects"`
}

// Client is a rate-limited HTTP client for the access-statistics service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the maximum number of requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new access-statistics client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup returns the access record stored under key, or nil when the
// service has no history for it. Envelopes whose first object carries no
// recognized access type count as no history.
func (c *Client) Lookup(ctx context.Context, key string) (access.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("code", key)
	u := c.baseURL + "/api/v1/general/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("no accesses recorded", zap.String("key", key))
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(env.Objects) == 0 {
		c.logger.Debug("no accesses recorded", zap.String("key", key))
		return nil, nil
	}

	var rec access.Record
	if err := json.Unmarshal(env.Objects[0], &rec); err != nil {
		return nil, fmt.Errorf("%w: decoding record for %s: %v", ErrInvalidResponse, key, err)
	}
	if len(rec) == 0 {
		return nil, nil
	}

	c.logger.Debug("accesses found", zap.String("key", key), zap.Int("types", len(rec)))
	return rec, nil
}
