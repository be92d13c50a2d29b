package collector

import (
	"context"

	"StockSentinel/internal/model"
)

// Fetcher retrieves historical bars for one symbol.
type Fetcher interface {
	FetchChart(ctx context.Context, symbol string, period model.Period, interval model.Interval) (*model.Chart, error)
	Name() string
}
