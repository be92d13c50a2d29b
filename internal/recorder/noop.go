package recorder

import (
	"context"

	"StockSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when no store is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ context.Context, _ *model.Analysis) error { return nil }
func (n *NoopRecorder) RecordScan(_ context.Context, _ *ScanSummary, _ []model.Analysis) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
