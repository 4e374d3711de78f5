// Package golfapi searches courses on the remote golf course API.
package golfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/metrics"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.golfcourseapi.com"

	searchPath = "/v1/search"
)

// Client is an HTTP client for the course search API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	cacheTTL   time.Duration
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithRateLimit caps outgoing requests per second. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithCache stores raw search responses for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option { return func(c *Client) { c.log = log } }

// NewClient creates a client. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// SearchCourses returns courses matching query. A blank query returns nothing without
// calling the API. Transport, status and decode failures wrap models.ErrIO.
func (c *Client) SearchCourses(ctx context.Context, query string) ([]models.Course, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Course{}, nil
	}

	cacheKey := "golfapi:search:" + strings.ToLower(query)
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, cacheKey); ok {
			if courses, err := decodeSearch(body); err == nil {
				metrics.SearchRequestsTotal.WithLabelValues("cache_hit").Inc()
				c.log.Debug("course_search_cache_hit", "query", query, "courses", len(courses))
				return courses, nil
			}
		}
	}

	body, err := c.fetch(ctx, query)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		c.log.Warn("course_search_failed", "query", query, "err", err)
		return nil, fmt.Errorf("%w: course search: %w", models.ErrIO, err)
	}
	courses, err := decodeSearch(body)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		c.log.Warn("course_search_decode_failed", "query", query, "err", err)
		return nil, fmt.Errorf("%w: decode search response: %w", models.ErrIO, err)
	}
	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.log.Warn("course_search_cache_set_failed", "err", err)
		}
	}
	c.log.Info("course_search", "query", query, "courses", len(courses))
	return courses, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	params := url.Values{}
	params.Set("search_query", query)
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, searchPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.SearchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func decodeSearch(body []byte) ([]models.Course, error) {
	var sr models.SearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, err
	}
	if sr.Courses == nil {
		return []models.Course{}, nil
	}
	return sr.Courses, nil
}
