// Package backend talks to the movie recommendation backend over HTTP.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout      = 20 * time.Second
	defaultRetries      = 1
	defaultRetryBackoff = 250 * time.Millisecond
	defaultTFIDFTopN    = 12
	defaultGenreLimit   = 12
	userAgent           = "Marquee/1.0"

	// Responses larger than this are treated as unparseable
	maxBodySize = 8 << 20
)

// Client implements domain.Catalog against the recommendation backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	breaker    *gobreaker.CircuitBreaker[[]byte]
	inflight   singleflight.Group
	logger     *slog.Logger

	tfidfTopN  int
	genreLimit int
}

var _ domain.Catalog = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (and with it timeout and retries)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache memoizes successful responses
func WithCache(rc *cache.Cache) Option {
	return func(c *Client) {
		if rc != nil {
			c.cache = rc
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecommendationLimits sets the list sizes asked of /movie/search
func WithRecommendationLimits(tfidfTopN, genreLimit int) Option {
	return func(c *Client) {
		if tfidfTopN > 0 {
			c.tfidfTopN = tfidfTopN
		}
		if genreLimit > 0 {
			c.genreLimit = genreLimit
		}
	}
}

// NewClient creates a backend client. Without WithCache nothing is memoized.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewHTTPClient(defaultTimeout, defaultRetries),
		cache:      cache.New(0),
		logger:     slog.Default(),
		tfidfTopN:  defaultTFIDFTopN,
		genreLimit: defaultGenreLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(c.logger)
	return c
}

// New creates a client from configuration
func New(cfg *config.Config, rc *cache.Cache, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}

	return NewClient(cfg.Backend.URL,
		WithHTTPClient(NewHTTPClient(cfg.Backend.Timeout, cfg.Backend.Retries)),
		WithCache(rc),
		WithLogger(logger),
		WithRecommendationLimits(cfg.Backend.TFIDFTopN, cfg.Backend.GenreLimit),
	), nil
}

// NewHTTPClient builds the HTTP client used for backend calls: a bounded
// total timeout with transport-level retries inside it.
func NewHTTPClient(timeout time.Duration, retries int) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			base:    http.DefaultTransport,
			max:     retries,
			backoff: defaultRetryBackoff,
		},
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches path with params and returns the raw JSON body.
// Identical requests within the cache TTL are answered from the cache and
// concurrent identical requests share one network call. Errors are never
// memoized.
//
// The shared call is detached from any one caller: a caller whose ctx ends
// returns early while the call runs on for the others, bounded by the HTTP
// client timeout. Callers giving up therefore never count against the
// circuit breaker.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	key := cache.Key(path, params)

	if data, ok := c.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		c.logger.Debug("backend cache hit", "key", key)
		return data, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	flight := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (interface{}, error) {
		data, err := c.fetch(flight, path, params)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(key, data); err != nil {
			c.logger.Warn("failed to persist cached response", "key", key, "error", err)
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		c.logger.Debug("caller stopped waiting for backend", "key", key, "error", ctx.Err())
		return nil, fmt.Errorf("GET %s: %w", path, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("backend request shared", "key", key)
		}
		return res.Val.([]byte), nil
	}
}

// fetch runs one request through the circuit breaker
func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := endpointLabel(path)

	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, endpoint, path, params)
	})
	if err == nil {
		metrics.BackendRequests.WithLabelValues(endpoint, "ok").Inc()
		return data, nil
	}

	switch {
	case isRejected(err):
		metrics.BackendRequests.WithLabelValues(endpoint, "rejected").Inc()
		c.logger.Warn("backend request rejected", "path", path, "error", err)
		return nil, rejectedError(err)
	case domain.StatusCode(err) != 0:
		metrics.BackendRequests.WithLabelValues(endpoint, "http_error").Inc()
	default:
		metrics.BackendRequests.WithLabelValues(endpoint, "unreachable").Inc()
	}
	return nil, err
}

// doRequest performs a GET and classifies the outcome
func (c *Client) doRequest(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("backend request", "url", reqURL)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Error("backend request failed", "url", reqURL, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		c.logger.Error("failed to read backend response", "url", reqURL, "error", err)
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrBackendUnreachable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("backend returned error status", "url", reqURL, "status", resp.StatusCode)
		return nil, &domain.HTTPStatusError{Code: resp.StatusCode}
	}

	if len(body) > maxBodySize || !json.Valid(bytes.TrimSpace(body)) {
		c.logger.Error("backend returned invalid JSON", "url", reqURL, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: invalid JSON response", domain.ErrBackendUnreachable)
	}

	return body, nil
}

// Purge drops all memoized responses
func (c *Client) Purge() error {
	if err := c.cache.Purge(); err != nil {
		return fmt.Errorf("purge response cache: %w", err)
	}
	c.logger.Info("response cache purged")
	return nil
}

// CircuitState reports the breaker state ("closed", "half-open", "open")
func (c *Client) CircuitState() string {
	return stateString(c.breaker.State())
}

// Search queries the backend's TMDB search proxy
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	return c.Get(ctx, "/tmdb/search", url.Values{"query": {query}})
}

// Home returns the curated feed for category
func (c *Client) Home(ctx context.Context, category domain.Category, limit int) ([]byte, error) {
	return c.Get(ctx, "/home", url.Values{
		"category": {string(category)},
		"limit":    {strconv.Itoa(limit)},
	})
}

// Movie returns the detail record for id
func (c *Client) Movie(ctx context.Context, id int) ([]byte, error) {
	return c.Get(ctx, "/movie/id/"+strconv.Itoa(id), nil)
}

// Recommendations returns the recommendation bundle for a title
func (c *Client) Recommendations(ctx context.Context, title string) ([]byte, error) {
	return c.Get(ctx, "/movie/search", url.Values{
		"query":       {title},
		"tfidf_top_n": {strconv.Itoa(c.tfidfTopN)},
		"genre_limit": {strconv.Itoa(c.genreLimit)},
	})
}

// endpointLabel collapses per-movie paths so metrics stay low-cardinality
func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/movie/id/") {
		return "/movie/id"
	}
	return path
}

// IsUnreachable reports whether err means the backend could not be reached
func IsUnreachable(err error) bool {
	return errors.Is(err, domain.ErrBackendUnreachable)
}
