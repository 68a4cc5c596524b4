// Package datasource fetches market data from upstream HTTP providers and
// normalizes each response into a models.Snapshot. Every source isolates its
// own failures: a missing field or symbol is skipped, and an error is returned
// only when nothing usable was obtained.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/seenimoa/wealthvista/pkg/models"
)

// Source fetches one snapshot category from its upstream provider(s).
type Source interface {
	// Name returns a short human-readable name for logs.
	Name() string

	// Category returns the cache key the snapshot is stored under.
	Category() models.Category

	// Fetch returns a normalized snapshot stamped with at. Implementations
	// bound every outbound call by their own timeout.
	Fetch(ctx context.Context, at time.Time) (models.Snapshot, error)
}

// --- Sentinel errors ---

// ErrNoData is returned when a provider answered but nothing usable survived normalization.
var ErrNoData = errors.New("no usable data from provider")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client ---

// Client is the outbound HTTP helper shared by all sources.
type Client struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
	log       *slog.Logger
}

// NewClient creates a client whose requests are each bounded by timeout.
func NewClient(timeout time.Duration, userAgent string, log *slog.Logger) *Client {
	return &Client{
		http:      &http.Client{},
		userAgent: userAgent,
		timeout:   timeout,
		log:       log,
	}
}

// doGet performs a GET request, returning the response body for a 2xx/3xx answer.
// The caller is responsible for closing the returned ReadCloser.
func (c *Client) doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", req.URL.Redacted(), err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}

// getJSON fetches url and decodes the JSON body into out, bounded by the
// client's default timeout.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	return c.getJSONWithin(ctx, c.timeout, url, out)
}

// getJSONWithin is getJSON with an explicit per-request timeout.
func (c *Client) getJSONWithin(ctx context.Context, timeout time.Duration, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := c.doGet(ctx, url, nil)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
