// Package accessstats queries the search index of precomputed access counts.
package accessstats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.uber.org/zap"
)

const (
	// DefaultIndex is the index holding one access document per article.
	DefaultIndex = "accesses"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 60 * time.Second

	// bucketLimit caps the terms aggregations.
	bucketLimit = 1000
)

// Common errors returned by the index client.
var (
	// ErrNetworkError indicates the index could not be reached.
	ErrNetworkError = errors.New("network error communicating with access index")

	// ErrInvalidResponse indicates a payload that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from access index")

	// ErrSearchFailed indicates the index answered with an error status.
	ErrSearchFailed = errors.New("access index search failed")
)

// Lifetime is the access count of documents published in one year,
// accessed in another.
type Lifetime struct {
	PublicationYear string
	AccessYear      string
	HTML            int
	Abstract        int
	PDF             int
	EPDF            int
	Total           int
}

// Client queries the access index.
type Client struct {
	transport opensearchapi.Transport
	index     string
	logger    *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithIndex sets the index name.
func WithIndex(index string) ClientOption {
	return func(c *Client) {
		if index != "" {
			c.index = index
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTransport replaces the search transport.
func WithTransport(t opensearchapi.Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// NewClient creates a client for the index served at addresses.
func NewClient(addresses []string, opts ...ClientOption) (*Client, error) {
	osc, err := opensearch.NewClient(opensearch.Config{
		Addresses:     addresses,
		Transport:     &http.Transport{ResponseHeaderTimeout: DefaultTimeout},
		RetryOnStatus: []int{502, 503, 504, 429},
	})
	if err != nil {
		return nil, fmt.Errorf("creating index client: %w", err)
	}

	c := &Client{
		transport: osc,
		index:     DefaultIndex,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lifetime returns the accesses of a journal's documents, per publication
// year and access year, sorted by both.
func (c *Client) Lifetime(ctx context.Context, issn, collection string) ([]Lifetime, error) {
	body, err := json.Marshal(lifetimeQuery(issn, collection))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, c.transport)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrSearchFailed, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	rows := result.lifetime()
	c.logger.Debug("lifetime computed",
		zap.String("issn", issn),
		zap.String("collection", collection),
		zap.Int("rows", len(rows)))
	return rows, nil
}

func lifetimeQuery(issn, collection string) map[string]any {
	sum := func(field string) map[string]any {
		return map[string]any{"sum": map[string]any{"field": field}}
	}
	terms := func(field string) map[string]any {
		return map[string]any{
			"field": field,
			"size":  bucketLimit,
			"order": map[string]any{"access_total": "desc"},
		}
	}

	return map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"match": map[string]any{"collection": collection}},
					map[string]any{"match": map[string]any{"issn": issn}},
				},
			},
		},
		"aggs": map[string]any{
			"publication_year": map[string]any{
				"terms": terms("publication_year"),
				"aggs": map[string]any{
					"access_total": sum("access_total"),
					"access_year": map[string]any{
						"terms": terms("access_year"),
						"aggs": map[string]any{
							"access_total":    sum("access_total"),
							"access_abstract": sum("access_abstract"),
							"access_epdf":     sum("access_epdf"),
							"access_html":     sum("access_html"),
							"access_pdf":      sum("access_pdf"),
						},
					},
				},
			},
		},
	}
}

type searchResult struct {
	Aggregations struct {
		PublicationYear struct {
			Buckets []struct {
				Key        bucketKey `json:"key"`
				AccessYear struct {
					Buckets []accessYearBucket `json:"buckets"`
				} `json:"access_year"`
			} `json:"buckets"`
		} `json:"publication_year"`
	} `json:"aggregations"`
}

type accessYearBucket struct {
	Key            bucketKey `json:"key"`
	AccessHTML     sumValue  `json:"access_html"`
	AccessAbstract sumValue  `json:"access_abstract"`
	AccessPDF      sumValue  `json:"access_pdf"`
	AccessEPDF     sumValue  `json:"access_epdf"`
	AccessTotal    sumValue  `json:"access_total"`
}

type sumValue struct {
	Value float64 `json:"value"`
}

// bucketKey accepts string and numeric terms keys.
type bucketKey string

func (k *bucketKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = bucketKey(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("bucket key %s: %w", data, err)
	}
	if i, err := n.Int64(); err == nil {
		*k = bucketKey(strconv.FormatInt(i, 10))
		return nil
	}
	*k = bucketKey(n.String())
	return nil
}

func (r searchResult) lifetime() []Lifetime {
	var rows []Lifetime
	for _, pub := range r.Aggregations.PublicationYear.Buckets {
		for _, acc := range pub.AccessYear.Buckets {
			rows = append(rows, Lifetime{
				PublicationYear: string(pub.Key),
				AccessYear:      string(acc.Key),
				HTML:            int(acc.AccessHTML.Value),
				Abstract:        int(acc.AccessAbstract.Value),
				PDF:             int(acc.AccessPDF.Value),
				EPDF:            int(acc.AccessEPDF.Value),
				Total:           int(acc.AccessTotal.Value),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PublicationYear != rows[j].PublicationYear {
			return rows[i].PublicationYear < rows[j].PublicationYear
		}
		return rows[i].AccessYear < rows[j].AccessYear
	})
	return rows
}
