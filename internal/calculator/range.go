package calculator

import (
	"math"

	"StockSentinel/internal/model"
)

// PeriodRange scans the whole series for the high and low and places the last
// close within that range (0.0~1.0).
func PeriodRange(series *model.PriceSeries) (model.PriceRange, error) {
	n := series.Len()
	if n == 0 {
		return model.PriceRange{}, model.ErrEmptySeries
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	for i := 0; i < n; i++ {
		if series.High[i] > high {
			high = series.High[i]
		}
		if series.Low[i] < low {
			low = series.Low[i]
		}
	}
	return model.PriceRange{
		High:     high,
		Low:      low,
		Position: rangePosition(series.Close[n-1], high, low),
	}, nil
}

func rangePosition(current, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
