package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("search quota exhausted")

type searchRepositoriesResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []Repository `json:"items"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the GitHub search API. Rate-limit bookkeeping is instance
// state, fed from the X-RateLimit-* response headers.
type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	baseURL     string
	token       string

	mu        sync.Mutex
	remaining int
	resetAt   time.Time
}

func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
		token:      token,
		remaining:  -1, // unknown until the first response
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// RateLimit returns the last observed remaining quota and its reset time.
// Remaining is -1 before any request has been made.
func (c *Client) RateLimit() (remaining int, resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining, c.resetAt
}

func (c *Client) SearchRepositories(ctx context.Context, parameters SearchParameters) ([]Repository, bool, error) {

	if err := parameters.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid parameters: %w", err)
	}

	apiURL := c.baseURL + "/search/repositories?" + parameters.ToUrlParams().Encode()

	body, err := c.sendRequest(ctx, "GET", apiURL)
	if err != nil {
		return nil, false, err
	}

	var response searchRepositoriesResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		return nil, false, fmt.Errorf("error decoding JSON response: %v", err)
	}

	fetched := parameters.Page * parameters.PerPage
	hasMore := len(response.Items) == parameters.PerPage &&
		fetched < response.TotalCount && fetched < maxSearchResults

	return response.Items, hasMore, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {

	remaining, resetAt := c.recordRateLimit(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %v", err)
	}

	if (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) && remaining == 0 {
		return nil, errors.Wrapf(ErrRateLimited, "resets at %v", resetAt)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	return body, nil
}

func (c *Client) recordRateLimit(resp *http.Response) (int, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value := resp.Header.Get("X-RateLimit-Remaining"); value != "" {
		if remaining, err := strconv.Atoi(value); err == nil {
			c.remaining = remaining
		}
	}
	if value := resp.Header.Get("X-RateLimit-Reset"); value != "" {
		if reset, err := strconv.ParseInt(value, 10, 64); err == nil {
			c.resetAt = time.Unix(reset, 0)
		}
	}
	return c.remaining, c.resetAt
}
