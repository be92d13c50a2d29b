package strategy

import (
	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// Score bounds.
const (
	MinScore = -100
	MaxScore = 100
)

// VolumeSpikeRatio is the multiple of trailing mean volume that counts as a spike.
const VolumeSpikeRatio = 1.5

// rule is one additive scoring condition on the latest bar. Conditions written
// as plain comparisons never fire on undefined operands.
type rule struct {
	name   string
	points int
	when   func(b model.Bar, avgVolume float64) bool
}

var rules = []rule{
	{"RSI oversold", 20, func(b model.Bar, _ float64) bool { return b.RSI < RSIOversold }},
	{"RSI overbought", -20, func(b model.Bar, _ float64) bool { return b.RSI > RSIOverbought }},
	{"RSI neutral", 10, func(b model.Bar, _ float64) bool {
		return b.RSI >= RSIOversold && b.RSI <= RSIOverbought
	}},
	{"MACD above signal", 20, func(b model.Bar, _ float64) bool { return b.MACD > b.MACDSignal }},
	{"MACD below signal", -20, func(b model.Bar, _ float64) bool { return b.MACD < b.MACDSignal }},
	{"Close above SMA20", 15, func(b model.Bar, _ float64) bool { return b.Close > b.SMA20 }},
	{"Close at or below SMA20", -15, func(b model.Bar, _ float64) bool { return b.Close <= b.SMA20 }},
	{"Close below lower band", 15, func(b model.Bar, _ float64) bool { return b.Close < b.BBLower }},
	{"Close above upper band", -15, func(b model.Bar, _ float64) bool { return b.Close > b.BBUpper }},
	{"Volume spike", 10, func(b model.Bar, avg float64) bool { return b.Volume > VolumeSpikeRatio*avg }},
}

// Score evaluates the rule table on the frame's latest bar and clamps the sum
// into [MinScore, MaxScore].
//
// Since BBLower <= SMA20 <= BBUpper, each band rule is offset by the opposite
// moving-average rule, so real frames land in [-55, 65] and the clamp never
// binds. It is kept so the bound holds for any rule table.
func Score(f *model.Frame) (model.TechnicalScore, error) {
	n := f.Len()
	if n == 0 {
		return model.TechnicalScore{}, model.ErrEmptySeries
	}
	if n < 2 {
		return model.TechnicalScore{}, model.ErrInsufficientData
	}

	last := f.BarAt(n - 1)
	avgVolume := calculator.TrailingMean(f.Volume, calculator.VolumeWindow)

	var ts model.TechnicalScore
	for _, r := range rules {
		if r.when(last, avgVolume) {
			ts.Raw += r.points
			ts.Rules = append(ts.Rules, model.RuleContribution{Name: r.name, Points: r.points})
		}
	}
	ts.Value = clamp(ts.Raw)
	return ts, nil
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
