package recorder

import (
	"context"
	"errors"
	"time"

	"StockSentinel/internal/model"
)

// ScanSummary is the persisted outline of one recommendation scan.
type ScanSummary struct {
	Kind          string
	StartedAt     time.Time
	Duration      time.Duration
	MinConfidence model.Confidence
	Analyzed      int
	BuySignals    int
	SellSignals   int
	Failed        int
	Sentiment     model.Label
}

// Recorder persists analysis results for later review.
type Recorder interface {
	RecordAnalysis(ctx context.Context, a *model.Analysis) error
	RecordScan(ctx context.Context, scan *ScanSummary, picks []model.Analysis) error
	Close() error
}

// Multi fans every call out to all recorders and joins their errors.
type Multi []Recorder

func (m Multi) RecordAnalysis(ctx context.Context, a *model.Analysis) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordAnalysis(ctx, a))
	}
	return errors.Join(errs...)
}

func (m Multi) RecordScan(ctx context.Context, scan *ScanSummary, picks []model.Analysis) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordScan(ctx, scan, picks))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
