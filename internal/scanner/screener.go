package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
	"StockSentinel/internal/strategy"
)

// Criterion is one screening condition on the latest bar.
type Criterion string

const (
	RSIOversold   Criterion = "RSI_Oversold"
	RSIOverbought Criterion = "RSI_Overbought"
	AboveSMA20    Criterion = "Above_SMA20"
	BelowSMA20    Criterion = "Below_SMA20"
	MACDBullish   Criterion = "MACD_Bullish"
	MACDBearish   Criterion = "MACD_Bearish"
)

// AllCriteria lists the supported criteria in display order.
var AllCriteria = []Criterion{RSIOversold, RSIOverbought, AboveSMA20, BelowSMA20, MACDBullish, MACDBearish}

// ErrNoCriteria is returned when a screen is requested without conditions.
var ErrNoCriteria = errors.New("at least one screening criterion is required")

// ParseCriterion validates a criterion name.
func ParseCriterion(v string) (Criterion, error) {
	for _, c := range AllCriteria {
		if string(c) == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown criterion %q", v)
}

// Matches reports whether the latest bar satisfies the criterion. Undefined
// indicator values never satisfy a criterion.
func (c Criterion) Matches(b model.Bar, macd model.Label) bool {
	switch c {
	case RSIOversold:
		return b.RSI < strategy.RSIOversold
	case RSIOverbought:
		return b.RSI > strategy.RSIOverbought
	case AboveSMA20:
		return b.Close > b.SMA20
	case BelowSMA20:
		return b.Close < b.SMA20
	case MACDBullish:
		return macd == model.Buy
	case MACDBearish:
		return macd == model.Sell
	}
	return false
}

// ScreenRow is one matching symbol.
type ScreenRow struct {
	Symbol     string      `json:"Symbol"`
	Close      float64     `json:"Close"`
	RSI        *float64    `json:"RSI"`
	MACDSignal model.Label `json:"MACD_Signal"`
	MASignal   model.Label `json:"MA_Signal"`
}

// ScreenReport is the outcome of a screener run.
type ScreenReport struct {
	Criteria []Criterion `json:"criteria"`
	Rows     []ScreenRow `json:"rows"`
	Scanned  int         `json:"scanned"`
	Failures []Failure   `json:"failures,omitempty"`
}

// ScreenOptions selects the data window for a screen.
type ScreenOptions struct {
	Period   model.Period
	Interval model.Interval
}

// Screen evaluates every symbol against all criteria and keeps those that
// meet every one. Rows keep the input symbol order.
func (s *Scanner) Screen(ctx context.Context, symbols []string, criteria []Criterion, opts ScreenOptions) (*ScreenReport, error) {
	if len(criteria) == 0 {
		return nil, ErrNoCriteria
	}
	if opts.Period == "" {
		opts.Period = model.Period1Mo
	}
	if opts.Interval == "" {
		opts.Interval = model.Interval1D
	}

	start := time.Now()
	rows := make([]*ScreenRow, len(symbols))
	errs := s.each(ctx, symbols, nil, func(ctx context.Context, i int, symbol string) error {
		row, err := s.screenOne(ctx, symbol, criteria, opts)
		if err != nil {
			return err
		}
		rows[i] = row
		return nil
	})

	report := &ScreenReport{
		Criteria: criteria,
		Rows:     []ScreenRow{},
		Scanned:  len(symbols),
		Failures: s.collectFailures(symbols, errs),
	}
	for _, r := range rows {
		if r != nil {
			report.Rows = append(report.Rows, *r)
		}
	}
	s.observeScan("screener", start, len(symbols), len(report.Failures))
	return report, ctx.Err()
}

func (s *Scanner) screenOne(ctx context.Context, symbol string, criteria []Criterion, opts ScreenOptions) (*ScreenRow, error) {
	series, _, err := s.Collector.Collect(ctx, symbol, opts.Period, opts.Interval)
	if err != nil {
		return nil, err
	}
	f, err := calculator.AddIndicators(series)
	if err != nil {
		return nil, err
	}
	summary, err := strategy.Summarize(strategy.Classify(f))
	if err != nil {
		return nil, err
	}
	last := f.BarAt(f.Len() - 1)
	for _, c := range criteria {
		if !c.Matches(last, summary.MACD) {
			return nil, nil
		}
	}
	return &ScreenRow{
		Symbol:     symbol,
		Close:      last.Close,
		RSI:        model.Ptr(last.RSI),
		MACDSignal: summary.MACD,
		MASignal:   summary.MA,
	}, nil
}
