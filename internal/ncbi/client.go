// Package ncbi looks up genome assembly dataset reports from the NCBI Datasets API.
package ncbi

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// httpClient performs requests; tests may replace it with a mock transport.
// It has no timeout of its own; each attempt is bounded by the client's timeout.
var httpClient = &http.Client{}

// retryBackoff is the base delay between attempts after a 429 or transport error.
var retryBackoff = 500 * time.Millisecond

const (
	maxAttempts = 3

	// currentCacheVersion defines the version of cached response bodies
	currentCacheVersion = 1

	reportEndpoint = "dataset_report"
)

// reportFilters restricts results to current reference assemblies at every assembly level.
var reportFilters = strings.Join([]string{
	"filters.reference_only=true",
	"filters.assembly_source=all",
	"filters.has_annotation=false",
	"filters.exclude_paired_reports=true",
	"filters.exclude_atypical=false",
	"filters.assembly_version=current",
	"filters.assembly_level=chromosome",
	"filters.assembly_level=contig",
	"filters.assembly_level=scaffold",
	"filters.assembly_level=complete_genome",
}, "&")

// Client implements contract.ReportSource against the Datasets REST API.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	timeout   time.Duration
	cache     contract.CacheStore
	cacheTTL  time.Duration
	group     singleflight.Group
}

var _ contract.ReportSource = &Client{} // Compile-time check

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends the key in the api-key header of every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout bounds each request attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCache stores successful response bodies in store for ttl.
func WithCache(store contract.CacheStore, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = schema.DefaultAPIBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "asmstats",
		timeout:   contract.DefaultAPITimeout,
		cacheTTL:  contract.DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a client from validated settings.
// A nil store disables response caching.
func NewClientFromConfig(cfg *contract.Config, store contract.CacheStore, version string) *Client {
	opts := []Option{
		WithAPIKey(cfg.APIKey),
		WithTimeout(cfg.APITimeout),
		WithUserAgent("asmstats/" + version),
	}
	if store != nil {
		opts = append(opts, WithCache(store, cfg.CacheTTL))
	}
	return NewClient(cfg.APIBaseURL, opts...)
}

// ByAccession implements the ReportSource interface.
func (c *Client) ByAccession(ctx context.Context, accessions []string, pageSize int) (schema.LookupResult, error) {
	return c.lookup(ctx, c.ReportURL("accession", accessions, pageSize))
}

// ByTaxon implements the ReportSource interface.
func (c *Client) ByTaxon(ctx context.Context, taxa []string, pageSize int) (schema.LookupResult, error) {
	return c.lookup(ctx, c.ReportURL("taxon", taxa, pageSize))
}

// ReportURL builds the dataset_report URL for a lookup kind ("accession" or "taxon").
// Tokens are path-escaped and joined with an encoded comma.
func (c *Client) ReportURL(kind string, tokens []string, pageSize int) string {
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = url.PathEscape(t)
	}
	return fmt.Sprintf("%s/genome/%s/%s/%s?%s&page_size=%s",
		c.baseURL, kind, strings.Join(escaped, "%2C"), reportEndpoint, reportFilters, strconv.Itoa(pageSize))
}

// lookup serves a URL from cache or the network. Concurrent calls for the
// same URL share one fetch.
func (c *Client) lookup(ctx context.Context, reqURL string) (schema.LookupResult, error) {
	key := cacheKey(reqURL)
	if res, ok := c.checkCacheHit(key); ok {
		contract.Logger().Debug("dataset report cache hit", zap.String("url", reqURL))
		return res, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, reqURL, key)
	})
	if err != nil {
		return schema.LookupResult{}, err
	}
	if shared {
		contract.Logger().Debug("dataset report fetch shared", zap.String("url", reqURL))
	}
	return v.(schema.LookupResult), nil
}

// fetch performs the request with retries and caches a successful body.
func (c *Client) fetch(ctx context.Context, reqURL, key string) (schema.LookupResult, error) {
	log := contract.Logger().With(zap.String("url", reqURL))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, body, err := c.do(ctx, reqURL)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return schema.LookupResult{}, ctx.Err()
			}
			lastErr = err
			log.Debug("dataset report request failed", zap.Int("attempt", attempt), zap.Error(err))
		case status == http.StatusTooManyRequests:
			lastErr = nil
			log.Debug("dataset report rate limited", zap.Int("attempt", attempt))
		case status < 200 || status > 299:
			log.Debug("dataset report rejected", zap.Int("status", status))
			return schema.LookupResult{Success: false, StatusText: statusText(status)}, nil
		default:
			res, err := schema.DecodeLookupResult(body)
			if err != nil {
				return schema.LookupResult{}, err
			}
			c.store(key, body)
			log.Debug("dataset report fetched", zap.Int("total_count", res.TotalCount), zap.Int("reports", len(res.Reports)))
			return res, nil
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return schema.LookupResult{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}
	if lastErr != nil {
		return schema.LookupResult{}, fmt.Errorf("dataset report request failed after %d attempts: %w", maxAttempts, lastErr)
	}
	return schema.LookupResult{Success: false, StatusText: statusText(http.StatusTooManyRequests)}, nil
}

// do sends one GET request and returns the status code and body.
func (c *Client) do(ctx context.Context, reqURL string) (int, []byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// checkCacheHit attempts to retrieve and validate a cached response body
func (c *Client) checkCacheHit(key string) (schema.LookupResult, bool) {
	if c.cache == nil {
		return schema.LookupResult{}, false
	}
	data, version, ts, err := c.cache.Get(key)
	if err != nil || version != currentCacheVersion {
		return schema.LookupResult{}, false
	}
	if time.Since(time.Unix(ts, 0)) > c.cacheTTL {
		return schema.LookupResult{}, false
	}
	res, err := schema.DecodeLookupResult(data)
	if err != nil {
		return schema.LookupResult{}, false
	}
	return res, true
}

// store writes a response body to the cache, warning on failure.
func (c *Client) store(key string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(key, body, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to cache dataset report", err)
	}
}

// cacheKey hashes a request URL into a cache key.
func cacheKey(reqURL string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(reqURL)))
}

// statusText mirrors the reason phrase a browser exposes for a status code.
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return strconv.Itoa(code)
}
