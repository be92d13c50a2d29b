package scanner

import (
	"context"
	"sort"
	"strings"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/strategy"
)

// Market sentiment thresholds on the buy share of analyzed symbols, in percent.
const (
	BullishBuyPct = 60.0
	BearishBuyPct = 40.0
)

// Pick is one recommended symbol.
type Pick struct {
	model.Analysis
	Basis string `json:"basis"`
}

// Insights summarizes a recommendation run.
type Insights struct {
	TotalAnalyzed int         `json:"total_analyzed"`
	BuySignals    int         `json:"buy_signals"`
	SellSignals   int         `json:"sell_signals"`
	BuyPercentage float64     `json:"buy_percentage"`
	Sentiment     model.Label `json:"sentiment"`
}

// RecommendationReport is the outcome of a recommendation run.
type RecommendationReport struct {
	GeneratedAt   time.Time        `json:"generated_at"`
	MinConfidence model.Confidence `json:"min_confidence"`
	Picks         []Pick           `json:"picks"`
	Insights      Insights         `json:"insights"`
	Failures      []Failure        `json:"failures,omitempty"`
}

// RecommendOptions selects the data window and confidence floor.
type RecommendOptions struct {
	Period        model.Period
	Interval      model.Interval
	MinConfidence model.Confidence
}

// Basis explains which readings drove a pick.
func Basis(a *model.Analysis) string {
	var reasons []string
	if a.TechnicalScore > 50 {
		reasons = append(reasons, "Strong technical indicators")
	}
	if a.SignalSummary.RSI == model.Oversold {
		reasons = append(reasons, "Oversold (RSI)")
	}
	if a.SignalSummary.MACD == model.Buy {
		reasons = append(reasons, "Bullish MACD crossover")
	}
	if a.SignalSummary.MA == model.Bullish {
		reasons = append(reasons, "Above key moving averages")
	}
	if len(reasons) == 0 {
		return "Multiple factors"
	}
	return strings.Join(reasons, ", ")
}

// Sentiment maps the buy percentage of analyzed symbols to a market mood.
func Sentiment(buyPct float64) model.Label {
	switch {
	case buyPct > BullishBuyPct:
		return model.Bullish
	case buyPct < BearishBuyPct:
		return model.Bearish
	}
	return model.Neutral
}

// Recommend analyzes every symbol, keeps those at or above the confidence
// floor and ranks them by score, highest first.
func (s *Scanner) Recommend(ctx context.Context, symbols []string, opts RecommendOptions, progress ProgressFunc) (*RecommendationReport, error) {
	if opts.Period == "" {
		opts.Period = model.Period3Mo
	}
	if opts.Interval == "" {
		opts.Interval = model.Interval1D
	}
	if opts.MinConfidence == "" {
		opts.MinConfidence = model.Low
	}

	start := time.Now()
	analyses := make([]*model.Analysis, len(symbols))
	errs := s.each(ctx, symbols, progress, func(ctx context.Context, i int, symbol string) error {
		series, _, err := s.Collector.Collect(ctx, symbol, opts.Period, opts.Interval)
		if err != nil {
			return err
		}
		a, _, err := strategy.Analyze(series)
		if err != nil {
			return err
		}
		s.Metrics.ObserveAnalysis(string(a.Recommendation))
		analyses[i] = a
		return nil
	})

	report := &RecommendationReport{
		GeneratedAt:   time.Now().UTC(),
		MinConfidence: opts.MinConfidence,
		Picks:         []Pick{},
		Failures:      s.collectFailures(symbols, errs),
	}
	floor := opts.MinConfidence.Rank()
	for _, a := range analyses {
		if a == nil {
			continue
		}
		report.Insights.TotalAnalyzed++
		if a.Confidence.Rank() < floor {
			continue
		}
		report.Picks = append(report.Picks, Pick{Analysis: *a, Basis: Basis(a)})
		switch {
		case a.Recommendation.IsBuy():
			report.Insights.BuySignals++
		case a.Recommendation.IsSell():
			report.Insights.SellSignals++
		}
	}
	sort.SliceStable(report.Picks, func(i, j int) bool {
		return report.Picks[i].TechnicalScore > report.Picks[j].TechnicalScore
	})

	if n := report.Insights.TotalAnalyzed; n > 0 {
		report.Insights.BuyPercentage = float64(report.Insights.BuySignals) / float64(n) * 100
	}
	report.Insights.Sentiment = Sentiment(report.Insights.BuyPercentage)
	if report.Insights.TotalAnalyzed > 0 {
		s.Metrics.SetBuyRatio(report.Insights.BuyPercentage / 100)
	}

	s.observeScan("recommend", start, len(symbols), len(report.Failures))
	return report, ctx.Err()
}
