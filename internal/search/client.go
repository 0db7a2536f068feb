// Package search wraps the Google Custom Search REST API. Failures degrade
// to an empty result list; callers treat "nothing found" and "search broke"
// the same way, as "no information".
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Searcher returns web results for a query.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]Result, error)
}

// Client queries the Google Custom Search JSON API.
type Client struct {
	apiKey   string
	cseID    string
	endpoint string
	client   *http.Client
}

type ClientOption func(*Client)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.client.Timeout = d }
}

func NewClient(apiKey, cseID string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:   apiKey,
		cseID:    cseID,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to numResults hits. Transport errors and non-200
// statuses yield an error alongside an empty slice; an empty result set on
// a 200 is a normal outcome.
func (c *Client) Search(ctx context.Context, query string, numResults int) ([]Result, error) {
	if numResults <= 0 {
		numResults = 3
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send search request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", res.StatusCode)
	}

	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return results, nil
}

// FormatResults renders hits as a numbered block for prompt injection.
func FormatResults(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "Result %d: %s\n%s\n%s\n\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}
