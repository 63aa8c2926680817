package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/mana-tomb/internal/metrics"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "ManaTomb/1.0"
	DefaultRateLimit = 10 // requests per second

	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	RateLimit float64 // requests per second
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	baseURL        string
	userAgent      string
	initialBackoff time.Duration
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

// NewClient creates a new Scryfall API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		userAgent:      opts.UserAgent,
		initialBackoff: initialBackoff,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
}

// GetCard retrieves a card by its Scryfall ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	endpoint := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(id))

	var card Card
	if err := c.doRequest(ctx, endpoint, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}

	return &card, nil
}

// SearchCards performs a full-text search for cards. Pages start at 1; a
// page below 1 requests the first page.
func (c *Client) SearchCards(ctx context.Context, query string, page int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	endpoint := c.baseURL + "/cards/search?" + params.Encode()

	var result SearchResult
	if err := c.doRequest(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to search cards with query '%s': %w", query, err)
	}

	return &result, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic. The
// whole call, retries included, is recorded as one sample; a 404 is an answer,
// not a failure.
func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	start := time.Now()
	err := c.retry(ctx, endpoint, result)
	c.metrics.RecordScryfall(time.Since(start), err != nil && !IsNotFound(err))
	return err
}

func (c *Client) retry(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		wait, err := c.attempt(ctx, endpoint, result)
		if err == nil {
			return nil
		}
		if wait < 0 {
			return err
		}

		lastErr = err
		if attempt == maxRetries {
			break
		}
		if wait == 0 {
			wait = backoff
		}

		c.logger.Debug("Retrying Scryfall request",
			zap.String("url", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		if err := sleep(ctx, wait); err != nil {
			return err
		}
		backoff = min(backoff*2, maxBackoff)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// attempt performs one request. A negative wait marks a permanent failure,
// zero asks for the default backoff, and a positive wait is a server-given
// Retry-After.
func (c *Client) attempt(ctx context.Context, endpoint string, result any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return -1, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return -1, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return -1, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return 0, nil

	case http.StatusTooManyRequests:
		return retryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return -1, &NotFoundError{URL: endpoint}

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return -1, &apiErr
		}

		return -1, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return min(time.Duration(seconds)*time.Second, maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
