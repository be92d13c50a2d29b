package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockSentinel/internal/model"

	"golang.org/x/time/rate"
)

// DefaultYahooBaseURL is the public chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooOptions configures a YahooFetcher.
type YahooOptions struct {
	BaseURL           string
	Suffix            string // appended to bare symbols, e.g. ".NS"
	ProxyURL          string
	Timeout           time.Duration
	RequestsPerSecond int
}

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Suffix  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewYahooFetcher creates a rate-limited fetcher with optional proxy support.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultYahooBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		Suffix:  opts.Suffix,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.RequestsPerSecond),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// Ticker maps a bare exchange symbol to the Yahoo ticker.
func (f *YahooFetcher) Ticker(symbol string) string {
	if f.Suffix == "" || strings.Contains(symbol, ".") || strings.HasPrefix(symbol, "^") {
		return symbol
	}
	return symbol + f.Suffix
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote arrays hold null for bars without trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol           string   `json:"symbol"`
				Currency         string   `json:"currency"`
				ExchangeName     string   `json:"exchangeName"`
				FullExchangeName string   `json:"fullExchangeName"`
				LongName         string   `json:"longName"`
				ShortName        string   `json:"shortName"`
				RegularMarketVol *float64 `json:"regularMarketVolume"`
				FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func valueAt(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// FetchChart downloads bars for the period at the given interval. Requests are
// not retried; callers decide how to treat a failed symbol.
func (f *YahooFetcher) FetchChart(ctx context.Context, symbol string, period model.Period, interval model.Interval) (*model.Chart, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("yahoo rate limit: %w", err)
	}

	ticker := f.Ticker(symbol)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(ticker), interval, period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no result for %s", ticker)
	}

	result := chart.Chart.Result[0]
	meta := result.Meta
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	exchange := meta.FullExchangeName
	if exchange == "" {
		exchange = meta.ExchangeName
	}
	out := &model.Chart{
		Instrument: model.Instrument{
			Symbol:       symbol,
			Ticker:       ticker,
			Name:         name,
			Exchange:     exchange,
			Currency:     meta.Currency,
			MarketVolume: deref(meta.RegularMarketVol),
			High52w:      deref(meta.FiftyTwoWeekHigh),
			Low52w:       deref(meta.FiftyTwoWeekLow),
		},
	}
	if len(result.Indicators.Quote) == 0 {
		return out, nil
	}

	quote := result.Indicators.Quote[0]
	out.Bars = make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c, ok := valueAt(quote.Close, i)
		if !ok {
			continue // skip null bars (holidays etc.)
		}
		o, _ := valueAt(quote.Open, i)
		h, _ := valueAt(quote.High, i)
		l, _ := valueAt(quote.Low, i)
		v, _ := valueAt(quote.Volume, i)
		out.Bars = append(out.Bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}

	sort.Slice(out.Bars, func(i, j int) bool { return out.Bars[i].Time.Before(out.Bars[j].Time) })
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
