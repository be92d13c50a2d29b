package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/scanner"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notifier delivers formatted reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NewsSource fetches headlines for one symbol.
type NewsSource interface {
	Fetch(ctx context.Context, symbol string) ([]model.NewsItem, error)
}

// Options controls the scheduled scan.
type Options struct {
	Symbols       []string
	Period        model.Period
	Interval      model.Interval
	MinConfidence model.Confidence
	TopPicks      int
}

// Scheduler runs the recommendation scan on a cron schedule and answers
// bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	News     NewsSource
	Notifier Notifier
	Recorder recorder.Recorder
	Calendar *TradingCalendar
	Options  Options
	Ctx      context.Context
	now      func() time.Time
	logger   zerolog.Logger
}

// NewScheduler creates a new Scheduler. news and n may be nil.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, news NewsSource, n Notifier, rec recorder.Recorder, cal *TradingCalendar, opts Options) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.TopPicks == 0 {
		opts.TopPicks = 10
	}
	// Cron expressions are read in the exchange's timezone.
	loc := time.Local
	if cal != nil && cal.Timezone != nil {
		loc = cal.Timezone
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Scanner:  sc,
		News:     news,
		Notifier: n,
		Recorder: rec,
		Calendar: cal,
		Options:  opts,
		Ctx:      ctx,
		now:      time.Now,
		logger:   log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the daily scan.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunScanNow executes the scan immediately, ignoring the trading calendar.
func (s *Scheduler) RunScanNow() (*scanner.RecommendationReport, error) {
	return s.runScan(s.Ctx, s.Options.MinConfidence)
}

func (s *Scheduler) scanTask() {
	if s.Calendar != nil && !s.Calendar.IsTradingDay(s.now()) {
		s.logger.Info().Msg("not a trading day, skipping scan")
		return
	}
	if _, err := s.runScan(s.Ctx, s.Options.MinConfidence); err != nil {
		s.logger.Error().Err(err).Msg("scheduled scan")
		s.trySend(fmt.Sprintf("❌ Scheduled scan failed: %v", err))
	}
}

func (s *Scheduler) runScan(ctx context.Context, minConf model.Confidence) (*scanner.RecommendationReport, error) {
	started := s.now()
	report, err := s.Scanner.Recommend(ctx, s.Options.Symbols, scanner.RecommendOptions{
		Period:        s.Options.Period,
		Interval:      s.Options.Interval,
		MinConfidence: minConf,
	}, nil)
	if err != nil {
		return nil, err
	}

	picks := make([]model.Analysis, len(report.Picks))
	for i := range report.Picks {
		picks[i] = report.Picks[i].Analysis
	}
	if err := s.Recorder.RecordScan(ctx, &recorder.ScanSummary{
		Kind:          "recommend",
		StartedAt:     started,
		Duration:      s.now().Sub(started),
		MinConfidence: report.MinConfidence,
		Analyzed:      report.Insights.TotalAnalyzed,
		BuySignals:    report.Insights.BuySignals,
		SellSignals:   report.Insights.SellSignals,
		Failed:        len(report.Failures),
		Sentiment:     report.Insights.Sentiment,
	}, picks); err != nil {
		s.logger.Error().Err(err).Msg("record scan")
	}

	s.trySend(notifier.FormatRecommendations(report, s.Options.TopPicks))
	return report, nil
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string, args []string) string {
	switch command {
	case "analyze":
		if len(args) == 0 {
			return "Usage: /analyze SYMBOL"
		}
		symbol := strings.ToUpper(args[0])
		d, err := s.Scanner.Analyze(ctx, symbol, s.Options.Period, s.Options.Interval)
		if err != nil {
			return commandError(symbol, err)
		}
		if err := s.Recorder.RecordAnalysis(ctx, d.Analysis); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("record analysis")
		}
		return notifier.FormatAnalysis(d)
	case "recommend":
		minConf := s.Options.MinConfidence
		if len(args) > 0 {
			c, ok := model.ParseConfidence(args[0])
			if !ok {
				return "Confidence must be Low, Medium or High"
			}
			minConf = c
		}
		report, err := s.Scanner.Recommend(ctx, s.Options.Symbols, scanner.RecommendOptions{
			Period: s.Options.Period, Interval: s.Options.Interval, MinConfidence: minConf,
		}, nil)
		if err != nil {
			return fmt.Sprintf("❌ Scan failed: %v", err)
		}
		return notifier.FormatRecommendations(report, s.Options.TopPicks)
	case "news":
		if len(args) == 0 {
			return "Usage: /news SYMBOL"
		}
		if s.News == nil {
			return "News is not configured"
		}
		symbol := strings.ToUpper(args[0])
		items, err := s.News.Fetch(ctx, symbol)
		if err != nil {
			return fmt.Sprintf("❌ News for %s unavailable: %v", symbol, err)
		}
		return notifier.FormatNews(symbol, items)
	default:
		return notifier.FormatHelp()
	}
}

func commandError(symbol string, err error) string {
	switch {
	case errors.Is(err, model.ErrEmptySeries):
		return fmt.Sprintf("No data found for %s", symbol)
	case errors.Is(err, model.ErrInsufficientData):
		return fmt.Sprintf("Not enough history for %s", symbol)
	case errors.Is(err, model.ErrFetchFailure):
		return fmt.Sprintf("❌ Could not fetch %s", symbol)
	}
	return fmt.Sprintf("❌ Analysis of %s failed: %v", symbol, err)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
