package model

import (
	"strings"
	"time"
)

// Recommendation is the action derived from the technical score.
type Recommendation string

const (
	StrongBuy  Recommendation = "Strong Buy"
	BuyRec     Recommendation = "Buy"
	Hold       Recommendation = "Hold"
	SellRec    Recommendation = "Sell"
	StrongSell Recommendation = "Strong Sell"
)

// IsBuy reports Buy or Strong Buy.
func (r Recommendation) IsBuy() bool { return r == StrongBuy || r == BuyRec }

// IsSell reports Sell or Strong Sell.
func (r Recommendation) IsSell() bool { return r == StrongSell || r == SellRec }

// Confidence expresses how far the score is from neutral.
type Confidence string

const (
	Low    Confidence = "Low"
	Medium Confidence = "Medium"
	High   Confidence = "High"
)

// Rank orders confidence tiers; unknown values rank below Low.
func (c Confidence) Rank() int {
	switch c {
	case Low:
		return 1
	case Medium:
		return 2
	case High:
		return 3
	}
	return 0
}

// ParseConfidence accepts Low, Medium or High in any letter case.
func ParseConfidence(v string) (Confidence, bool) {
	for _, c := range []Confidence{Low, Medium, High} {
		if strings.EqualFold(v, string(c)) {
			return c, true
		}
	}
	return Confidence(v), false
}

// RuleContribution is one scoring rule that fired on the latest bar.
type RuleContribution struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// TechnicalScore is the clamped sum of rule contributions.
type TechnicalScore struct {
	Value int                `json:"value"`
	Raw   int                `json:"raw"`
	Rules []RuleContribution `json:"rules"`
}

// Analysis is the per-symbol result record.
type Analysis struct {
	Symbol         string             `json:"symbol"`
	Recommendation Recommendation     `json:"recommendation"`
	Confidence     Confidence         `json:"confidence"`
	TechnicalScore int                `json:"technical_score"`
	SignalSummary  SignalSummary      `json:"signal_summary"`
	LastPrice      float64            `json:"last_price"`
	PriceChange    float64            `json:"price_change"`
	Rules          []RuleContribution `json:"rules,omitempty"`
	AsOf           time.Time          `json:"as_of"`
}
