package jsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://jsearch.p.rapidapi.com"
	defaultHost    = "jsearch.p.rapidapi.com"
	defaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL string
	Host    string // x-rapidapi-host header
	APIKey  string
	// KeyFunc, when set, resolves the API key per call so a key stored
	// after startup is picked up by the next batch.
	KeyFunc        func() (string, error)
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	HTTPClient     *http.Client // optional, for tests
}

// Client fetches one page of listings per call. The rate limiter keeps a
// misconfigured schedule from burning through the provider quota.
type Client struct {
	baseURL string
	host    string
	apiKey  string
	keyFunc func() (string, error)
	hc      *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: baseURL,
		host:    host,
		apiKey:  cfg.APIKey,
		keyFunc: cfg.KeyFunc,
		hc:      hc,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Search fetches the first page of results for the query. No pagination:
// one sync batch is one page.
func (c *Client) Search(ctx context.Context, query string) ([]Listing, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("jsearch: query is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	key := c.apiKey
	if c.keyFunc != nil {
		k, err := c.keyFunc()
		if err != nil {
			return nil, fmt.Errorf("jsearch: resolve api key: %w", err)
		}
		key = k
	}

	values := url.Values{}
	values.Set("query", query)
	values.Set("page", "1")
	values.Set("num_pages", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jsearch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-rapidapi-key", key)
	req.Header.Set("x-rapidapi-host", c.host)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("jsearch: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("jsearch: decode response: %w", err)
	}

	return payload.Data, nil
}
