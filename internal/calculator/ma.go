package calculator

import (
	"math"

	"StockSentinel/internal/model"
)

// SMA computes the trailing simple moving average over window values.
// The first window-1 entries are undefined.
func SMA(values []float64, window int) model.Column {
	out := undefined(len(values))
	if window <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes the exponential moving average with alpha = 2/(span+1), no bias
// adjustment. The first defined observation seeds the average; leading undefined
// inputs stay undefined.
func EMA(values []float64, span int) model.Column {
	out := undefined(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev += alpha * (v - prev)
		}
		out[i] = prev
	}
	return out
}

// TrailingMean averages the last min(window, len(values)) values.
func TrailingMean(values []float64, window int) float64 {
	n := len(values)
	if n == 0 || window <= 0 {
		return math.NaN()
	}
	start := n - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, v := range values[start:] {
		sum += v
	}
	return sum / float64(n-start)
}

func undefined(n int) model.Column {
	out := make(model.Column, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
