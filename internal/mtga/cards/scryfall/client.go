// Package scryfall is a rate-limited client for the Scryfall card API.
package scryfall

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

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // Scryfall asks for at most 10 req/sec
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client is a Scryfall API client with rate limiting and retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the minimum delay between requests.
func WithRateLimit(every time.Duration) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Every(every), 1) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a new Scryfall API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "MagicLeagueGenerator/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSet retrieves set information by set code.
func (c *Client) GetSet(ctx context.Context, code string) (*Set, error) {
	u := fmt.Sprintf("%s/sets/%s", c.baseURL, url.PathEscape(strings.ToLower(code)))

	var set Set
	if err := c.doRequest(ctx, u, &set); err != nil {
		return nil, fmt.Errorf("failed to get set %s: %w", code, err)
	}
	return &set, nil
}

// GetCardBySetNumber retrieves one printing. An empty lang returns the
// English printing.
func (c *Client) GetCardBySetNumber(ctx context.Context, setCode, number, lang string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/%s/%s", c.baseURL, url.PathEscape(strings.ToLower(setCode)), url.PathEscape(number))
	if lang != "" && lang != "en" {
		u += "/" + url.PathEscape(lang)
	}

	var card Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s %s: %w", setCode, number, err)
	}
	return &card, nil
}

// Search returns one page of search results.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	u := c.baseURL + "/cards/search?" + opts.values(query).Encode()

	var result SearchResult
	if err := c.doRequest(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("failed to search cards with query '%s': %w", query, err)
	}
	return &result, nil
}

// SearchAll follows next_page links until every result has been read. A
// query without matches yields no cards and no error.
func (c *Client) SearchAll(ctx context.Context, query string, opts SearchOptions) ([]Card, error) {
	page, err := c.Search(ctx, query, opts)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	all := page.Data
	for page.HasMore && page.NextPage != "" {
		next := page.NextPage
		page = &SearchResult{}
		if err := c.doRequest(ctx, next, page); err != nil {
			return nil, fmt.Errorf("failed to read search page: %w", err)
		}
		all = append(all, page.Data...)
	}
	return all, nil
}

// SetCards returns every printing of a set in collector number order.
func (c *Client) SetCards(ctx context.Context, setCode, lang string) ([]Card, error) {
	query := fmt.Sprintf("set:%s order:set", strings.ToLower(setCode))
	if lang != "" && lang != "en" {
		query += " lang:" + lang
	}
	return c.SearchAll(ctx, query, SearchOptions{Unique: "prints", IncludeExtras: true})
}

// ImageURIs resolves the front and back image URIs of a printing.
func (c *Client) ImageURIs(ctx context.Context, setCode string, number int) (front, back string, err error) {
	card, err := c.GetCardBySetNumber(ctx, setCode, strconv.Itoa(number), "")
	if err != nil {
		return "", "", err
	}
	front, back = card.ImageURL(false), card.ImageURL(true)
	return front, back, nil
}

// Download fetches a raw resource, such as a card image, through the
// client's rate limiter.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	var data []byte
	err := c.do(ctx, rawURL, "*/*", func(body io.Reader) error {
		var err error
		data, err = io.ReadAll(body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	return data, nil
}

// doRequest performs a GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, u string, result interface{}) error {
	return c.do(ctx, u, "application/json", func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(result); err != nil {
			return fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return nil
	})
}

// do performs a GET request with rate limiting and retry logic, handing the
// body of a 200 response to read.
func (c *Client) do(ctx context.Context, u, accept string, read func(io.Reader) error) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", accept)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		retry, err := c.handle(resp, u, read)
		_ = resp.Body.Close()
		if !retry {
			return err
		}
		lastErr = err

		if wait, ok := retryAfter(resp); ok {
			backoff = wait
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handle interprets a response. It reports whether the request should be
// retried.
func (c *Client) handle(resp *http.Response, u string, read func(io.Reader) error) (bool, error) {
	switch {
	case resp.StatusCode == http.StatusOK:
		return false, read(resp.Body)

	case resp.StatusCode == http.StatusTooManyRequests:
		return true, errors.New("rate limited (HTTP 429)")

	case resp.StatusCode == http.StatusNotFound:
		return false, &NotFoundError{URL: u}

	case resp.StatusCode >= 500:
		return true, fmt.Errorf("server error (HTTP %d)", resp.StatusCode)

	default:
		body, _ := io.ReadAll(resp.Body)
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return false, &apiErr
		}
		return false, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func retryAfter(resp *http.Response) (time.Duration, bool) {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
