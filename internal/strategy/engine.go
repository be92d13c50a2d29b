package strategy

import (
	"fmt"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// PriceChange returns the percentage change of the last close against the previous one.
func PriceChange(closes []float64) (float64, error) {
	n := len(closes)
	if n == 0 {
		return 0, model.ErrEmptySeries
	}
	if n < 2 {
		return 0, model.ErrInsufficientData
	}
	prev := closes[n-2]
	if prev == 0 {
		return 0, fmt.Errorf("previous close is zero: %w", model.ErrInsufficientData)
	}
	return (closes[n-1]/prev - 1) * 100, nil
}

// Evaluate classifies, scores and maps an indicator frame to an analysis.
// The frame is not modified.
func Evaluate(f *model.Frame) (*model.Analysis, error) {
	n := f.Len()
	if n == 0 {
		return nil, model.ErrEmptySeries
	}

	summary, err := Summarize(Classify(f))
	if err != nil {
		return nil, err
	}
	score, err := Score(f)
	if err != nil {
		return nil, err
	}
	change, err := PriceChange(f.Close)
	if err != nil {
		return nil, err
	}

	s := float64(score.Value)
	return &model.Analysis{
		Symbol:         f.Symbol,
		Recommendation: Recommend(s),
		Confidence:     ConfidenceFor(s),
		TechnicalScore: score.Value,
		SignalSummary:  summary,
		LastPrice:      f.Close[n-1],
		PriceChange:    change,
		Rules:          score.Rules,
		AsOf:           f.Time[n-1],
	}, nil
}

// Analyze runs the indicator engine and evaluates the resulting frame.
func Analyze(series *model.PriceSeries) (*model.Analysis, *model.Frame, error) {
	f, err := calculator.AddIndicators(series)
	if err != nil {
		return nil, nil, err
	}
	a, err := Evaluate(f)
	if err != nil {
		return nil, f, err
	}
	return a, f, nil
}
