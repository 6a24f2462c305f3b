// Package analytics is a client for the bibliometric analytics service that
// computes journal impact factors.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the public analytics endpoint.
	BaseURL = "http://analytics.scielo.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the default number of requests per second.
	RateLimit = 10.0
)

// Common errors returned by the analytics client.
var (
	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with analytics")

	// ErrInvalidResponse indicates a payload that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from analytics")

	// ErrAPIError indicates a non-2xx answer.
	ErrAPIError = errors.New("analytics API error")
)

// impactFactorFields is the number of values in one impact factor entry:
// base year, immediacy and the 1 to 5 year factors.
const impactFactorFields = 7

// ImpactFactor is a journal's bibliometric indicators for one base year.
// Values are kept as the service renders them; absent values are empty.
type ImpactFactor struct {
	BaseYear  string
	Immediacy string
	// Factors holds the 1, 2, 3, 4 and 5 year impact factors.
	Factors [5]string
}

// Values returns the entry in column order.
func (f ImpactFactor) Values() []string {
	return append([]string{f.BaseYear, f.Immediacy}, f.Factors[:]...)
}

// Client is a rate-limited HTTP client for the analytics service.
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

// NewClient creates a new analytics client.
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

// ImpactFactor returns the impact factor series of the journal issn in
// collection, one entry per base year in the order the service returns
// them. A journal without indicators yields no entries.
func (c *Client) ImpactFactor(ctx context.Context, issn, collection string) ([]ImpactFactor, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("code", issn)
	params.Set("collection", collection)
	u := c.baseURL + "/ajx/bibliometric/journal/impact_factor?" + params.Encode()

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
		c.logger.Debug("no impact factor", zap.String("issn", issn))
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	var entries [][]value
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	out := make([]ImpactFactor, 0, len(entries))
	for i, e := range entries {
		if len(e) != impactFactorFields {
			return nil, fmt.Errorf("%w: entry %d of %s has %d values, want %d",
				ErrInvalidResponse, i, issn, len(e), impactFactorFields)
		}
		f := ImpactFactor{BaseYear: string(e[0]), Immediacy: string(e[1])}
		for j := range f.Factors {
			f.Factors[j] = string(e[j+2])
		}
		out = append(out, f)
	}

	c.logger.Debug("impact factor found", zap.String("issn", issn), zap.Int("years", len(out)))
	return out, nil
}

// value accepts strings, numbers and null, keeping numbers as written.
type value string

func (v *value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value %s: %w", data, err)
	}
	if i, err := n.Int64(); err == nil {
		*v = value(strconv.FormatInt(i, 10))
		return nil
	}
	*v = value(n.String())
	return nil
}
