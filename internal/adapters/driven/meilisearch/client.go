// Package meilisearch provides a driven.SearchIndex adapter over the
// official Meilisearch Go SDK.
package meilisearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SearchIndex = (*Client)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:7700"
	DefaultIndex   = domain.DefaultIndexName
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Meilisearch client.
type Config struct {
	// URL is the Meilisearch host (default: http://localhost:7700).
	URL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Index is the documents index name (default: documents).
	Index string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client queries one Meilisearch index.
type Client struct {
	index   meilisearch.IndexManager
	host    string
	name    string
	timeout time.Duration
}

// NewClient creates a new Meilisearch client.
func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	host := strings.TrimRight(cfg.URL, "/")

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: requestIDTransport{base: http.DefaultTransport},
	}
	opts := []meilisearch.Option{
		meilisearch.WithCustomClient(httpClient),
		meilisearch.DisableRetries(),
	}
	if cfg.APIKey != "" {
		opts = append(opts, meilisearch.WithAPIKey(cfg.APIKey))
	}

	return &Client{
		index:   meilisearch.New(host, opts...).Index(cfg.Index),
		host:    host,
		name:    cfg.Index,
		timeout: cfg.Timeout,
	}
}

// Index returns the index name queried by the client.
func (c *Client) Index() string {
	return c.name
}

// Search runs a compiled request against the index.
// Transport failures and non-2xx answers wrap domain.ErrSearchUnavailable.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	sreq := &meilisearch.SearchRequest{
		Sort:                  req.Sort,
		Offset:                int64(req.Offset),
		Limit:                 int64(req.Limit),
		AttributesToHighlight: req.AttributesToHighlight,
		HighlightPreTag:       req.HighlightPreTag,
		HighlightPostTag:      req.HighlightPostTag,
	}
	if req.Filter != "" {
		sreq.Filter = req.Filter
	}

	logger.Debug("meilisearch: q=%q filter=%q offset=%d limit=%d", req.Query, req.Filter, req.Offset, req.Limit)

	resp, err := c.index.SearchWithContext(ctx, req.Query, sreq)
	if err != nil {
		return nil, searchError(err)
	}

	hits, err := decodeHits(resp.Hits)
	if err != nil {
		return nil, fmt.Errorf("decode hits: %w", err)
	}
	return &domain.SearchResponse{
		Hits:               hits,
		EstimatedTotalHits: int(resp.EstimatedTotalHits),
		ProcessingTimeMs:   int(resp.ProcessingTimeMs),
		Query:              resp.Query,
	}, nil
}

// decodeHits converts the SDK's untyped hits into records.
func decodeHits(raw any) ([]domain.Record, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var hits []domain.Record
	if err := json.Unmarshal(data, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// searchError wraps SDK failures in domain.ErrSearchUnavailable, keeping the
// HTTP status when Meilisearch answered.
func searchError(err error) error {
	var apiErr *meilisearch.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return fmt.Errorf("%w: status %d: %v", domain.ErrSearchUnavailable, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
}

// requestIDTransport tags every request for correlation with server logs.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", uuid.NewString())
	return t.base.RoundTrip(req)
}
