package collector

import (
	"context"
	"fmt"
	"time"

	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price       float64
	Bars        int
	Data        map[string][]model.OHLCV // per-symbol overrides
	FailSymbols map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchChart(_ context.Context, symbol string, _ model.Period, _ model.Interval) (*model.Chart, error) {
	if err, ok := m.FailSymbols[symbol]; ok {
		return nil, err
	}
	chart := &model.Chart{
		Instrument: model.Instrument{Symbol: symbol, Ticker: symbol, Name: symbol, Exchange: "MOCK", Currency: "INR"},
	}
	if bars, ok := m.Data[symbol]; ok {
		chart.Bars = bars
		return chart, nil
	}
	count := m.Bars
	if count == 0 {
		count = 120
	}
	chart.Bars = generateMockBars(m.Price, count)
	return chart, nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 1000
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector turns fetcher output into validated price series.
type Collector struct {
	Fetcher Fetcher
	Metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCollector creates a new Collector. m may be nil.
func NewCollector(fetcher Fetcher, m *metrics.Metrics) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Metrics: m,
		logger:  log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches one symbol. Retrieval and validation problems are reported
// as model.ErrFetchFailure; a chart without bars is model.ErrEmptySeries.
func (c *Collector) Collect(ctx context.Context, symbol string, period model.Period, interval model.Interval) (*model.PriceSeries, *model.Instrument, error) {
	start := time.Now()
	chart, err := c.Fetcher.FetchChart(ctx, symbol, period, interval)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), time.Since(start), err)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("fetch failed")
		return nil, nil, fmt.Errorf("%s: %w: %w", symbol, model.ErrFetchFailure, err)
	}
	if len(chart.Bars) == 0 {
		return nil, &chart.Instrument, fmt.Errorf("%s: %w", symbol, model.ErrEmptySeries)
	}

	series := model.NewPriceSeries(symbol, chart.Bars)
	if err := series.Validate(); err != nil {
		return nil, &chart.Instrument, fmt.Errorf("%s: %w: %w", symbol, model.ErrFetchFailure, err)
	}
	c.logger.Debug().Str("symbol", symbol).Int("bars", series.Len()).Dur("took", time.Since(start)).Msg("collected")
	return series, &chart.Instrument, nil
}
