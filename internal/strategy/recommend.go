package strategy

import (
	"math"

	"StockSentinel/internal/model"
)

// Tiers maps a score floor to a recommendation, highest first.
var Tiers = []struct {
	MinScore       float64
	Recommendation model.Recommendation
}{
	{50, model.StrongBuy},
	{20, model.BuyRec},
}

// Sell side is open at the top, so -20 is already a Sell.
var sellTiers = []struct {
	MaxScore       float64
	Recommendation model.Recommendation
}{
	{-50, model.StrongSell},
	{-20, model.SellRec},
}

// Recommend maps a score to a recommendation.
func Recommend(score float64) model.Recommendation {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t.Recommendation
		}
	}
	for _, t := range sellTiers {
		if score <= t.MaxScore {
			return t.Recommendation
		}
	}
	return model.Hold
}

// ConfidenceFor maps the score's distance from neutral to a confidence tier.
func ConfidenceFor(score float64) model.Confidence {
	switch abs := math.Abs(score); {
	case abs >= 70:
		return model.High
	case abs >= 40:
		return model.Medium
	}
	return model.Low
}
