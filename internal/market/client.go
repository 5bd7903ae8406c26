// Package market fetches token market data from a Birdeye-compatible
// provider. It is a read-only collaborator: the signal engine consumes
// whatever batch it produces, and a failed fetch degrades to an empty batch
// at the call site.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solana-momentum-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Well-known addresses.
const solMint = "So11111111111111111111111111111111111111112"

// Client is an HTTP client for the market data provider.
type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new market data client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenList retrieves up to limit token records sorted by 24h volume
// descending and maps them into snapshots observed at observedAt.
func (c *Client) TokenList(ctx context.Context, limit int, observedAt time.Time) ([]*domain.TokenSnapshot, error) {
	params := url.Values{}
	params.Set("sort_by", "v24hUSD")
	params.Set("sort_type", "desc")
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(limit))

	var resp tokenListResponse
	if err := c.get(ctx, "/defi/tokenlist", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch token list: %w", err)
	}

	snapshots := make([]*domain.TokenSnapshot, 0, len(resp.Data.Tokens))
	for _, t := range resp.Data.Tokens {
		snapshots = append(snapshots, t.toSnapshot(observedAt.UnixMilli()))
	}
	return snapshots, nil
}

// NativePriceUSD retrieves the current SOL price in USD.
func (c *Client) NativePriceUSD(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("address", solMint)

	var resp priceResponse
	if err := c.get(ctx, "/defi/price", params, &resp); err != nil {
		return 0, fmt.Errorf("fetch native price: %w", err)
	}
	if resp.Data.Value <= 0 {
		return 0, fmt.Errorf("provider returned non-positive native price %f", resp.Data.Value)
	}
	return resp.Data.Value, nil
}

// get performs a GET request with retries and exponential backoff.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-KEY", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
			// Client errors other than rate limiting will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return lastErr
			}
			continue
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
