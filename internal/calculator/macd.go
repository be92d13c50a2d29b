package calculator

import "StockSentinel/internal/model"

// MACD returns the line (fast EMA minus slow EMA), its signal EMA and the
// histogram. A single bar carries no convergence information, so all three
// columns stay undefined below two bars.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist model.Column) {
	n := len(closes)
	if n < 2 {
		return undefined(n), undefined(n), undefined(n)
	}
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	line = make(model.Column, n)
	for i := range line {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(line, signal)
	hist = make(model.Column, n)
	for i := range hist {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}
