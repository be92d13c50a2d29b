package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockSentinel/internal/model"

	"github.com/mmcdole/gofeed/rss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Google News RSS search endpoint.
const DefaultBaseURL = "https://news.google.com/rss/search"

// Client fetches symbol headlines from an RSS search feed.
type Client struct {
	BaseURL  string
	MaxItems int
	HTTP     *http.Client
	logger   zerolog.Logger
}

// NewClient creates a news client with optional proxy support.
func NewClient(baseURL string, maxItems int, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxItems <= 0 {
		maxItems = 5
	}
	return &Client{
		BaseURL:  baseURL,
		MaxItems: maxItems,
		HTTP:     &http.Client{Timeout: 20 * time.Second, Transport: transport},
		logger:   log.With().Str("component", "news").Logger(),
	}
}

func (c *Client) feedURL(symbol string) string {
	q := url.Values{}
	q.Set("q", symbol+" NSE stock")
	q.Set("hl", "en-IN")
	q.Set("gl", "IN")
	q.Set("ceid", "IN:en")
	return c.BaseURL + "?" + q.Encode()
}

// Fetch returns up to MaxItems headlines for one symbol, in feed order.
func (c *Client) Fetch(ctx context.Context, symbol string) ([]model.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL(symbol), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news fetch %s: status %d", symbol, resp.StatusCode)
	}

	fp := &rss.Parser{}
	feed, err := fp.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("news parse %s: %w", symbol, err)
	}

	items := make([]model.NewsItem, 0, c.MaxItems)
	for _, it := range feed.Items {
		if len(items) == c.MaxItems {
			break
		}
		n := model.NewsItem{
			Symbol: symbol,
			Title:  strings.TrimSpace(it.Title),
			Link:   it.Link,
			Source: "Unknown",
		}
		if it.PubDateParsed != nil {
			n.Published = it.PubDateParsed.UTC()
		}
		if it.Source != nil && it.Source.Title != "" {
			n.Source = it.Source.Title
		}
		items = append(items, n)
	}
	return items, nil
}

// FetchAll merges headlines for many symbols, newest first. Symbols whose
// feed fails are logged and skipped.
func (c *Client) FetchAll(ctx context.Context, symbols []string) []model.NewsItem {
	var all []model.NewsItem
	for _, sym := range symbols {
		if ctx.Err() != nil {
			break
		}
		items, err := c.Fetch(ctx, sym)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", sym).Msg("news skipped")
			continue
		}
		all = append(all, items...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Published.After(all[j].Published) })
	return all
}
