package calculator

import (
	"math"

	"StockSentinel/internal/model"
)

// Bollinger returns the middle band (SMA) and the bands width sample standard
// deviations above and below it. Window 1 has no sample deviation, so the
// outer bands stay undefined there.
func Bollinger(closes []float64, window int, width float64) (upper, middle, lower model.Column) {
	n := len(closes)
	middle = SMA(closes, window)
	upper = undefined(n)
	lower = undefined(n)
	if window < 2 {
		return upper, middle, lower
	}
	for i := window - 1; i < n; i++ {
		mean := middle[i]
		var ss float64
		for _, v := range closes[i-window+1 : i+1] {
			d := v - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(window-1))
		upper[i] = mean + width*sd
		lower[i] = mean - width*sd
	}
	return upper, middle, lower
}
