package strategy

import "StockSentinel/internal/model"

// Classification thresholds.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// Comparisons against undefined (NaN) operands are false, so warm-up bars
// fall through to Neutral.

func rsiLabel(rsi float64) model.Label {
	switch {
	case rsi < RSIOversold:
		return model.Oversold
	case rsi > RSIOverbought:
		return model.Overbought
	}
	return model.Neutral
}

func macdLabel(macd, signal float64) model.Label {
	switch {
	case macd > signal:
		return model.Buy
	case macd < signal:
		return model.Sell
	}
	return model.Neutral
}

func bbLabel(close, lower, upper float64) model.Label {
	switch {
	case close < lower:
		return model.Oversold
	case close > upper:
		return model.Overbought
	}
	return model.Neutral
}

func maLabel(close, sma float64) model.Label {
	switch {
	case close > sma:
		return model.Bullish
	case close < sma:
		return model.Bearish
	}
	return model.Neutral
}

// Classify labels every bar of the frame.
func Classify(f *model.Frame) *model.SignalTable {
	n := f.Len()
	t := &model.SignalTable{
		RSI:  make([]model.Label, n),
		MACD: make([]model.Label, n),
		BB:   make([]model.Label, n),
		MA:   make([]model.Label, n),
	}
	for i := 0; i < n; i++ {
		b := f.BarAt(i)
		t.RSI[i] = rsiLabel(b.RSI)
		t.MACD[i] = macdLabel(b.MACD, b.MACDSignal)
		t.BB[i] = bbLabel(b.Close, b.BBLower, b.BBUpper)
		t.MA[i] = maLabel(b.Close, b.SMA20)
	}
	return t
}

// Summarize reports the final row's labels and the overall verdict.
func Summarize(t *model.SignalTable) (model.SignalSummary, error) {
	n := t.Len()
	if n == 0 {
		return model.SignalSummary{}, model.ErrEmptySeries
	}
	s := model.SignalSummary{
		RSI:  t.RSI[n-1],
		MACD: t.MACD[n-1],
		BB:   t.BB[n-1],
		MA:   t.MA[n-1],
	}
	s.Overall = overall(s.RSI, s.MACD, s.BB, s.MA)
	return s, nil
}

func overall(labels ...model.Label) model.Label {
	var bullish, bearish int
	for _, l := range labels {
		switch {
		case l.IsBullish():
			bullish++
		case l.IsBearish():
			bearish++
		}
	}
	switch {
	case bullish > bearish:
		return model.Bullish
	case bearish > bullish:
		return model.Bearish
	}
	return model.Neutral
}
