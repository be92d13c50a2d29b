package calculator

import "StockSentinel/internal/model"

// RSI computes the relative strength index from simple means of gains and
// losses over the trailing window deltas. The first bar has no previous close
// and counts as a zero delta, so the first value lands at index window-1. A
// window without losses reads 100.
func RSI(closes []float64, window int) model.Column {
	out := undefined(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}

	for i := window - 1; i < len(closes); i++ {
		var avgGain, avgLoss float64
		for j := i - window + 1; j <= i; j++ {
			if j == 0 {
				continue
			}
			change := closes[j] - closes[j-1]
			if change > 0 {
				avgGain += change
			} else {
				avgLoss -= change // make positive
			}
		}
		avgGain /= float64(window)
		avgLoss /= float64(window)

		if avgLoss == 0 {
			out[i] = 100.0
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}
