package client

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

	"github.com/patrickmn/go-cache"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 32 << 20
)

// Client is the outbound HTTP client used to reach remote catalogues. GET
// responses are kept for a few minutes.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
}

func New(userAgent string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(5*time.Minute, 10*time.Minute),
		userAgent: userAgent,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// BuildURL joins base and path and sets the query.
func BuildURL(base, path string, query url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// GetJSON fetches target and decodes the body into response.
func (c *Client) GetJSON(ctx context.Context, target string, response any) error {
	body, err := c.get(ctx, target, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, target, accept string) ([]byte, error) {
	cacheKey := accept + " " + target
	if cached, found := c.cache.Get(cacheKey); found {
		slog.DebugContext(ctx, "client cache hit", slog.String("url", target), slog.String("module", "client"))
		return cached.([]byte), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.cache.Set(cacheKey, body, cache.DefaultExpiration)
	return body, nil
}
