// Package request provides a minimal HTTP client with retries, exponential
// backoff and usage tracking. All calls are synchronous: a request returns
// only once the response body has been read or the context is done.
package request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adityahase/search/pkg/tracker"
	"github.com/adityahase/search/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("Wikigraph/%s (https://github.com/adityahase/search)", version.Version)

// ClientConfig holds retry and timeout tuning.
type ClientConfig struct {
	Retries   int
	Timeout   time.Duration
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultConfig returns conservative defaults suitable for the Wikidata API.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		Retries:   3,
		Timeout:   300 * time.Second,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  30 * time.Second,
	}
}

// Client performs HTTP GET requests.
type Client struct {
	httpClient *http.Client
	tracker    *tracker.Tracker
	cfg        ClientConfig
}

// New creates a new Client.
func New(t *tracker.Tracker, cfg ClientConfig) *Client {
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracker:    t,
		cfg:        cfg,
	}
}

// Get performs a GET request and returns the response body.
func (c *Client) Get(ctx context.Context, u string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	body, err := c.executeWithBackoff(req)
	if err != nil {
		c.tracker.TrackAPIFailure(provider)
		return nil, err
	}

	c.tracker.TrackAPISuccess(provider)
	return body, nil
}

func normalizeProvider(host string) string {
	// Group all wikidata subdomains (www, query, etc.) into one provider
	if strings.HasSuffix(host, ".wikidata.org") || host == "wikidata.org" {
		return "wikidata"
	}
	return host
}

// executeWithBackoff attempts the request with exponential backoff on
// retryable errors (network failures, 429 and 5xx responses).
func (c *Client) executeWithBackoff(req *http.Request) ([]byte, error) {
	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		// Verify context is still alive before dialing
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)

		if err != nil {
			// Check if the error is a context cancellation from OUR side
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}

			slog.Warn("Request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			if err := c.sleep(req, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode < 600) {
			resp.Body.Close()
			slog.Warn("API Backoff", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			if err := c.sleep(req, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded for %s", req.URL.Host)
}

// sleep waits out the backoff delay for the given attempt, honoring the
// request context.
func (c *Client) sleep(req *http.Request, attempt int) error {
	delay := time.Duration(math.Pow(2, float64(attempt))) * c.cfg.BaseDelay
	if c.cfg.MaxDelay > 0 && delay > c.cfg.MaxDelay {
		delay = c.cfg.MaxDelay
	}

	select {
	case <-time.After(delay):
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}
