package model

// Label is a categorical reading of one indicator family on one bar.
type Label string

const (
	Oversold   Label = "Oversold"
	Overbought Label = "Overbought"
	Buy        Label = "Buy"
	Sell       Label = "Sell"
	Bullish    Label = "Bullish"
	Bearish    Label = "Bearish"
	Neutral    Label = "Neutral"
)

// IsBullish reports membership in the bullish set {Buy, Bullish, Oversold}.
func (l Label) IsBullish() bool {
	return l == Buy || l == Bullish || l == Oversold
}

// IsBearish reports membership in the bearish set {Sell, Bearish, Overbought}.
func (l Label) IsBearish() bool {
	return l == Sell || l == Bearish || l == Overbought
}

// SignalTable holds per-bar labels aligned with the frame index.
type SignalTable struct {
	RSI  []Label `json:"rsi_signal"`
	MACD []Label `json:"macd_signal"`
	BB   []Label `json:"bb_signal"`
	MA   []Label `json:"ma_signal"`
}

// Len returns the number of labelled bars.
func (t *SignalTable) Len() int {
	return len(t.RSI)
}

// SignalSummary is the latest bar's labels plus the overall verdict.
type SignalSummary struct {
	RSI     Label `json:"RSI"`
	MACD    Label `json:"MACD"`
	BB      Label `json:"Bollinger"`
	MA      Label `json:"Moving Average"`
	Overall Label `json:"Overall"`
}

// Map returns the summary keyed by display name.
func (s SignalSummary) Map() map[string]Label {
	return map[string]Label{
		"RSI":            s.RSI,
		"MACD":           s.MACD,
		"Bollinger":      s.BB,
		"Moving Average": s.MA,
		"Overall":        s.Overall,
	}
}
