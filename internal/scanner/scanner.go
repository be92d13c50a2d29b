package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
	"StockSentinel/internal/strategy"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Failure kinds reported for skipped symbols.
const (
	KindEmptySeries      = "empty_series"
	KindInsufficientData = "insufficient_data"
	KindFetchFailure     = "fetch_failure"
	KindCanceled         = "canceled"
	KindInvalid          = "invalid"
)

// ErrorKind classifies an error from the collector or the pipeline.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, model.ErrEmptySeries):
		return KindEmptySeries
	case errors.Is(err, model.ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, model.ErrFetchFailure):
		return KindFetchFailure
	}
	return KindInvalid
}

// Failure records a symbol that was skipped during a batch.
type Failure struct {
	Symbol  string `json:"symbol"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Progress is reported once per finished symbol.
type Progress struct {
	Symbol string `json:"symbol"`
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Error  string `json:"error,omitempty"`
}

// ProgressFunc receives progress events. Calls are serialized.
type ProgressFunc func(Progress)

// Detail is the full single-symbol view.
type Detail struct {
	Analysis   *model.Analysis    `json:"analysis"`
	Instrument *model.Instrument  `json:"instrument"`
	Range      model.PriceRange   `json:"range"`
	Frame      *model.Frame       `json:"frame"`
	Signals    *model.SignalTable `json:"signals"`
}

// Scanner runs the analysis pipeline over one or many symbols.
type Scanner struct {
	Collector   *collector.Collector
	Metrics     *metrics.Metrics
	Concurrency int
	logger      zerolog.Logger
}

// NewScanner creates a scanner. m may be nil.
func NewScanner(col *collector.Collector, m *metrics.Metrics, concurrency int) *Scanner {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scanner{
		Collector:   col,
		Metrics:     m,
		Concurrency: concurrency,
		logger:      log.With().Str("component", "scanner").Logger(),
	}
}

// Analyze fetches and fully evaluates one symbol.
func (s *Scanner) Analyze(ctx context.Context, symbol string, period model.Period, interval model.Interval) (*Detail, error) {
	series, inst, err := s.Collector.Collect(ctx, symbol, period, interval)
	if err != nil {
		s.Metrics.ObserveAnalysis(ErrorKind(err))
		return nil, err
	}
	a, f, err := strategy.Analyze(series)
	if err != nil {
		s.Metrics.ObserveAnalysis(ErrorKind(err))
		return nil, err
	}
	s.Metrics.ObserveAnalysis(string(a.Recommendation))

	rng, err := calculator.PeriodRange(series)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Analysis:   a,
		Instrument: inst,
		Range:      rng,
		Frame:      f,
		Signals:    strategy.Classify(f),
	}, nil
}

// each runs fn for every symbol with at most Concurrency in flight. Results
// land at the symbol's index. A symbol error never stops the batch; only
// context cancellation stops new symbols from being scheduled.
func (s *Scanner) each(ctx context.Context, symbols []string, progress ProgressFunc, fn func(ctx context.Context, i int, symbol string) error) []error {
	errs := make([]error, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)

	var mu sync.Mutex
	done := 0

	for i, sym := range symbols {
		if gctx.Err() != nil {
			errs[i] = gctx.Err()
			continue
		}
		g.Go(func() error {
			err := fn(gctx, i, sym)
			errs[i] = err

			mu.Lock()
			done++
			if progress != nil {
				p := Progress{Symbol: sym, Done: done, Total: len(symbols)}
				if err != nil {
					p.Error = err.Error()
				}
				progress(p)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (s *Scanner) collectFailures(symbols []string, errs []error) []Failure {
	var failures []Failure
	for i, err := range errs {
		if err == nil {
			continue
		}
		kind := ErrorKind(err)
		s.Metrics.ObserveSymbolFailure(kind)
		s.logger.Debug().Str("symbol", symbols[i]).Str("kind", kind).Err(err).Msg("symbol skipped")
		failures = append(failures, Failure{Symbol: symbols[i], Kind: kind, Message: err.Error()})
	}
	return failures
}

func (s *Scanner) observeScan(kind string, start time.Time, n, failed int) {
	s.Metrics.ObserveScan(kind, time.Since(start))
	s.logger.Info().
		Str("kind", kind).
		Int("symbols", n).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("scan finished")
}
