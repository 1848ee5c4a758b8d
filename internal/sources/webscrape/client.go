package webscrape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/fortuna/augur/internal/sources"
)

const (
	// BaseURL for web search queries
	BaseURL = "https://www.google.com/search"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting
	MinRequestInterval = 2 * time.Second
)

// Client scrapes sports result cards from web search pages using a
// headless browser. It is the last, most permissive source in the chain.
type Client struct {
	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration

	allocCtx context.Context
	cancel   context.CancelFunc
}

// New creates a web-scrape client backed by a headless Chrome allocator.
func New() (*Client, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		interval: MinRequestInterval,
		allocCtx: allocCtx,
		cancel:   cancel,
	}, nil
}

// Close releases the browser allocator.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Name identifies this source in results and statistics.
func (c *Client) Name() string {
	return "web-search"
}

// Confidence reports the trust level assigned to this source's results.
func (c *Client) Confidence() string {
	return sources.ConfidenceLow
}

// Search fetches a search-results page for the fixture and parses the
// sports card out of it.
func (c *Client) Search(ctx context.Context, team, opponent, date string) (*sources.MatchResult, error) {
	query := buildQuery(team, opponent, date)

	html, err := c.fetchWithRateLimit(ctx, query)
	if err != nil {
		return nil, err
	}

	result, err := ParseResultCard(html, team)
	if err != nil {
		return nil, err
	}

	result.Source = c.Name()
	result.Confidence = c.Confidence()
	if result.MatchDate == "" {
		result.MatchDate = date
	}
	return result, nil
}

// buildQuery assembles the search string from whatever the slip yielded.
func buildQuery(team, opponent, date string) string {
	var parts []string
	if opponent != "" {
		parts = []string{team, "vs", opponent, "result"}
	} else {
		parts = []string{team, "match result"}
	}
	if date != "" {
		parts = append(parts, date)
	}
	return strings.Join(parts, " ")
}

// fetchWithRateLimit fetches content with automatic rate limiting.
func (c *Client) fetchWithRateLimit(ctx context.Context, query string) (string, error) {
	c.mu.Lock()
	if !c.lastRequest.IsZero() {
		if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
			time.Sleep(c.interval - elapsed)
		}
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	return c.fetch(ctx, query)
}

// fetch performs the actual page fetch using chromedp.
func (c *Client) fetch(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(c.allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancelTimeout()

	// Honor the caller's deadline as well as our own.
	go func() {
		<-ctx.Done()
		if ctx.Err() != nil {
			cancelBrowser()
		}
	}()

	var htmlContent string
	url := fmt.Sprintf("%s?q=%s", BaseURL, strings.ReplaceAll(query, " ", "+"))

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second), // Allow JS to render
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}
