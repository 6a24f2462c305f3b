package articlemeta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the public catalog endpoint.
	BaseURL = "http://articlemeta.scielo.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit is the default number of requests per second.
	RateLimit = 10.0

	// PageSize is the number of identifiers requested per page.
	PageSize = 1000
)

// Client is a rate-limited HTTP client for the metadata catalog.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	pageSize   int
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

// WithPageSize sets the identifiers page size.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger used for per-record progress.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new catalog client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		pageSize:   PageSize,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

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

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}

// identifiers fetches one page of record identifiers.
func (c *Client) identifiers(ctx context.Context, path, collection, issn string, offset int) ([]identifier, error) {
	params := url.Values{}
	if collection != "" {
		params.Set("collection", collection)
	}
	if issn != "" {
		params.Set("issn", issn)
	}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(c.pageSize))

	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("listing identifiers at offset %d: %w", offset, err)
	}

	var page identifiersPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: parsing identifiers: %v", ErrInvalidResponse, err)
	}
	return page.Objects, nil
}

// Document fetches a single article. It returns nil without error when the
// catalog has no record for the pair.
func (c *Client) Document(ctx context.Context, pid, collection string) (*Document, error) {
	params := url.Values{}
	params.Set("code", pid)
	params.Set("collection", collection)

	body, err := c.get(ctx, "/api/v1/article/", params)
	if err != nil {
		return nil, &ServerError{Op: "retrieving document", Collection: collection, Code: pid, Err: err}
	}

	if isNull(body) {
		c.logger.Warn("Document not found", zap.String("collection", collection), zap.String("pid", pid))
		return nil, nil
	}

	var dto articleDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &ServerError{
			Op:         "loading JSON for document",
			Collection: collection,
			Code:       pid,
			Err:        fmt.Errorf("%w: %v", ErrInvalidResponse, err),
		}
	}
	if dto.Collection == "" {
		dto.Collection = collection
	}
	if dto.Code == "" {
		dto.Code = pid
	}

	c.logger.Info("Document loaded", zap.String("collection", collection), zap.String("pid", pid))
	return mapDocument(dto), nil
}

// Journal fetches a single journal. It returns nil without error when the
// catalog has no record for the pair.
func (c *Client) Journal(ctx context.Context, issn, collection string) (*Journal, error) {
	params := url.Values{}
	params.Set("issn", issn)
	params.Set("collection", collection)

	body, err := c.get(ctx, "/api/v1/journal/", params)
	if err != nil {
		return nil, &ServerError{Op: "retrieving journal", Collection: collection, Code: issn, Err: err}
	}

	if isNull(body) {
		c.logger.Warn("Journal not found", zap.String("collection", collection), zap.String("issn", issn))
		return nil, nil
	}

	var dto journalDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &ServerError{
			Op:         "loading JSON for journal",
			Collection: collection,
			Code:       issn,
			Err:        fmt.Errorf("%w: %v", ErrInvalidResponse, err),
		}
	}
	if dto.Collection == "" {
		dto.Collection = collection
	}

	j := mapJournal(dto)
	c.logger.Info("Journal loaded", zap.String("collection", collection), zap.String("issn", issn))
	return &j, nil
}

// Documents lists the articles of a collection, optionally restricted to one
// journal, in catalog order. Identifier pages are fetched lazily; listing
// stops at the first empty page.
//
// A failure on a single article is yielded and iteration continues if the
// consumer keeps ranging. A failure listing identifiers ends the sequence.
func (c *Client) Documents(ctx context.Context, collection, issn string) iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		for offset := 0; ; offset += c.pageSize {
			ids, err := c.identifiers(ctx, "/api/v1/article/identifiers/", collection, issn, offset)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(ids) == 0 {
				return
			}

			for _, id := range ids {
				coll := id.Collection
				if coll == "" {
					coll = collection
				}
				doc, err := c.Document(ctx, string(id.Code), coll)
				if err != nil {
					if !yield(nil, err) {
						return
					}
					continue
				}
				if doc == nil {
					continue
				}
				if !yield(doc, nil) {
					return
				}
			}
		}
	}
}

// Journals lists the journals of a collection, optionally restricted to one
// ISSN, in catalog order. Pagination and failures behave as in Documents.
func (c *Client) Journals(ctx context.Context, collection, issn string) iter.Seq2[*Journal, error] {
	return func(yield func(*Journal, error) bool) {
		for offset := 0; ; offset += c.pageSize {
			ids, err := c.identifiers(ctx, "/api/v1/journal/identifiers/", collection, issn, offset)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(ids) == 0 {
				return
			}

			for _, id := range ids {
				coll := id.Collection
				if coll == "" {
					coll = collection
				}
				j, err := c.Journal(ctx, string(id.Code), coll)
				if err != nil {
					if !yield(nil, err) {
						return
					}
					continue
				}
				if j == nil {
					continue
				}
				if !yield(j, nil) {
					return
				}
			}
		}
	}
}

// isNull reports whether a body is empty or the JSON literal null.
func isNull(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
