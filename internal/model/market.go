package model

import (
	"fmt"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds one symbol's bars as parallel columns sharing a positional index.
type PriceSeries struct {
	Symbol string      `json:"symbol"`
	Time   []time.Time `json:"time"`
	Open   []float64   `json:"open"`
	High   []float64   `json:"high"`
	Low    []float64   `json:"low"`
	Close  []float64   `json:"close"`
	Volume []float64   `json:"volume"`
}

// NewPriceSeries splits bars into columns. Bars must already be in chronological order.
func NewPriceSeries(symbol string, bars []OHLCV) *PriceSeries {
	n := len(bars)
	s := &PriceSeries{
		Symbol: symbol,
		Time:   make([]time.Time, n),
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
		Volume: make([]float64, n),
	}
	for i, b := range bars {
		s.Time[i] = b.Time
		s.Open[i] = b.Open
		s.High[i] = b.High
		s.Low[i] = b.Low
		s.Close[i] = b.Close
		s.Volume[i] = b.Volume
	}
	return s
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Close)
}

// Validate checks column lengths and strictly increasing timestamps.
func (s *PriceSeries) Validate() error {
	n := len(s.Close)
	if len(s.Time) != n || len(s.Open) != n || len(s.High) != n || len(s.Low) != n || len(s.Volume) != n {
		return fmt.Errorf("series %s: column length mismatch", s.Symbol)
	}
	for i := 1; i < n; i++ {
		if !s.Time[i].After(s.Time[i-1]) {
			return fmt.Errorf("series %s: timestamps not increasing at bar %d", s.Symbol, i)
		}
	}
	return nil
}

// Clone returns a deep copy so derived frames never alias the caller's slices.
func (s *PriceSeries) Clone() PriceSeries {
	return PriceSeries{
		Symbol: s.Symbol,
		Time:   append([]time.Time(nil), s.Time...),
		Open:   append([]float64(nil), s.Open...),
		High:   append([]float64(nil), s.High...),
		Low:    append([]float64(nil), s.Low...),
		Close:  append([]float64(nil), s.Close...),
		Volume: append([]float64(nil), s.Volume...),
	}
}

// Instrument is the descriptive metadata returned alongside a chart.
type Instrument struct {
	Symbol       string  `json:"symbol"`
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Exchange     string  `json:"exchange"`
	Currency     string  `json:"currency"`
	MarketVolume float64 `json:"market_volume"`
	High52w      float64 `json:"high_52w"`
	Low52w       float64 `json:"low_52w"`
}

// Chart is a fetcher's answer: metadata plus chronological bars.
type Chart struct {
	Instrument Instrument
	Bars       []OHLCV
}

// PriceRange summarizes where the last close sits within the fetched period.
type PriceRange struct {
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Position float64 `json:"position"` // 0.0 ~ 1.0
}

// Period is a lookback window token understood by the chart API.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
)

// Interval is a bar size token.
type Interval string

const (
	Interval1D  Interval = "1d"
	Interval5D  Interval = "5d"
	Interval1Wk Interval = "1wk"
	Interval1Mo Interval = "1mo"
)

// ParsePeriod validates a period token.
func ParsePeriod(v string) (Period, error) {
	switch p := Period(v); p {
	case Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y, Period5Y:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", v)
}

// ParseInterval validates an interval token.
func ParseInterval(v string) (Interval, error) {
	switch i := Interval(v); i {
	case Interval1D, Interval5D, Interval1Wk, Interval1Mo:
		return i, nil
	}
	return "", fmt.Errorf("unknown interval %q", v)
}
