// Package client provides the HTTP client for the upstream comic API with request
// pacing, error classification and metrics.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
	"github.com/Sternrassler/comic-catalog/pkg/logging"
	"github.com/Sternrassler/comic-catalog/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for comic API operations.
var (
	comicRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comic_requests_total",
		Help: "Total comic API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	comicRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "comic_request_duration_seconds",
		Help:    "Comic API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	comicErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comic_errors_total",
		Help: "Total comic API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassNotFound represents 404 responses, which callers treat as empty pages.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassClient represents other 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses and local cooldown refusals.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents bodies that are not the expected JSON.
	ErrorClassDecode ErrorClass = "decode"
)

// Endpoint labels used for metrics and logs.
const (
	EndpointLibrary  = "library"
	EndpointTrending = "trending"
)

// DefaultBaseURL is the public comic API.
const DefaultBaseURL = "https://www.sankavollerei.com"

// Client is the comic API client.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the comic API, without a trailing path.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// RateLimit is the sustained requests per second; 0 disables pacing.
	RateLimit float64
	RateBurst int

	// Redis shares the upstream cooldown across instances. Optional.
	Redis *redis.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		RateLimit: 5,
		RateBurst: 4,
	}
}

// New creates a new comic API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must be >= 0 (got %v)", cfg.RateLimit)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := logging.NewLogger(logging.ComponentClient)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     base,
		rateLimiter: ratelimit.NewTracker(cfg.Redis, cfg.RateLimit, cfg.RateBurst, logger),
		config:      cfg,
		logger:      logger,
	}, nil
}

// Do performs an HTTP request with pacing, error classification and metrics.
// The endpoint label names the request in metrics and logs.
// Non-2xx responses are returned as *APIError with the body closed.
func (c *Client) Do(req *http.Request, endpoint string) (*http.Response, error) {
	ctx := req.Context()
	logger := logging.ForEndpoint(c.logger, endpoint)

	startTime := time.Now()
	defer func() {
		comicRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.rateLimiter.ShouldAllowRequest(ctx); err != nil {
		switch {
		case errors.Is(err, ratelimit.ErrCoolingDown):
			logger.Warn().Err(err).Msg("Request blocked by rate limiter")
			comicRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			comicErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, &APIError{
				ErrorClass: ErrorClassRateLimit,
				Endpoint:   endpoint,
				Message:    "request blocked",
				Err:        err,
			}
		case ctx.Err() != nil:
			// Cancelled sibling or superseded load; not an upstream failure.
			logger.Debug().Err(err).Msg("Request cancelled before sending")
			return nil, err
		default:
			logger.Error().Err(err).Msg("Rate limit state unavailable")
			comicErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return nil, &APIError{
				ErrorClass: ErrorClassNetwork,
				Endpoint:   endpoint,
				Message:    "rate limit state unavailable",
				Err:        err,
			}
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	logger.Debug().
		Str("url", req.URL.String()).
		Msg("Executing comic API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("HTTP request failed")
		comicErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		comicRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, err
	}

	comicRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if err := c.rateLimiter.UpdateFromResponse(ctx, resp.StatusCode, resp.Header); err != nil {
		logger.Warn().Err(err).Msg("Failed to update rate limit state")
	}

	if resp.StatusCode >= 400 {
		errClass := classifyStatus(resp.StatusCode)
		comicErrorsTotal.WithLabelValues(string(errClass)).Inc()

		logEvent := logger.Warn()
		if errClass == ErrorClassNotFound {
			logEvent = logger.Debug()
		}
		logEvent.
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Comic API request error")

		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Endpoint:   endpoint,
			Message:    resp.Status,
		}
	}

	return resp, nil
}

// Get performs a GET request to a path relative to the base URL.
func (c *Client) Get(ctx context.Context, path, endpoint string) (*http.Response, error) {
	target := c.baseURL.JoinPath(strings.Split(strings.Trim(path, "/"), "/")...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req, endpoint)
}

// FetchLibraryPage fetches one upstream library page.
// A 404 is returned as an error matching ErrNotFound.
func (c *Client) FetchLibraryPage(ctx context.Context, page int) ([]comic.LibraryRecord, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid upstream page %d", page)
	}

	var body comic.LibraryResponse
	if err := c.getJSON(ctx, "/comic/pustaka/"+strconv.Itoa(page), EndpointLibrary, &body); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("page", page).
		Int("records", len(body.Results)).
		Msg("Fetched library page")

	return body.Results, nil
}

// FetchPage implements pagination.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, page int) ([]comic.LibraryRecord, error) {
	return c.FetchLibraryPage(ctx, page)
}

// FetchTrending fetches the trending list.
func (c *Client) FetchTrending(ctx context.Context) ([]comic.TrendingRecord, error) {
	var body comic.TrendingResponse
	if err := c.getJSON(ctx, "/comic/trending", EndpointTrending, &body); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("records", len(body.Trending)).
		Msg("Fetched trending list")

	return body.Trending, nil
}

func (c *Client) getJSON(ctx context.Context, path, endpoint string, v interface{}) error {
	resp, err := c.Get(ctx, path, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		comicErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Endpoint:   endpoint,
			Message:    "decode response body",
			Err:        err,
		}
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// RateLimiter returns the rate limit tracker (for testing).
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}
