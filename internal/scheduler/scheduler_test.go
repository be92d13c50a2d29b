package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/model"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/scanner"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

type captureRecorder struct {
	recorder.NoopRecorder
	scans    []recorder.ScanSummary
	picks    int
	analyses []string
}

func (c *captureRecorder) RecordScan(_ context.Context, s *recorder.ScanSummary, picks []model.Analysis) error {
	c.scans = append(c.scans, *s)
	c.picks += len(picks)
	return nil
}

func (c *captureRecorder) RecordAnalysis(_ context.Context, a *model.Analysis) error {
	c.analyses = append(c.analyses, a.Symbol)
	return nil
}

type stubNews struct{ items []model.NewsItem }

func (s stubNews) Fetch(_ context.Context, symbol string) ([]model.NewsItem, error) {
	if symbol == "FAIL" {
		return nil, errors.New("feed down")
	}
	return s.items, nil
}

func rising(n int) []model.OHLCV {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	out := make([]model.OHLCV, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return out
}

func newTestScheduler(t *testing.T) (*Scheduler, *captureNotifier, *captureRecorder) {
	t.Helper()
	fetcher := &collector.MockFetcher{
		Data: map[string][]model.OHLCV{
			"RISE": rising(30),
			"ONE":  rising(1),
		},
		FailSymbols: map[string]error{"DOWN": errors.New("timeout")},
	}
	sc := scanner.NewScanner(collector.NewCollector(fetcher, nil), nil, 2)
	n := &captureNotifier{}
	rec := &captureRecorder{}
	news := stubNews{items: []model.NewsItem{{Symbol: "RISE", Title: "Results beat estimates", Source: "Mint", Published: time.Now()}}}
	s := NewScheduler(context.Background(), sc, news, n, rec, &TradingCalendar{Fallback: true, Timezone: time.UTC}, Options{
		Symbols:       []string{"RISE", "DOWN", "ONE"},
		MinConfidence: model.Low,
	})
	return s, n, rec
}

func TestRunScanNow(t *testing.T) {
	s, n, rec := newTestScheduler(t)
	report, err := s.RunScanNow()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(report.Picks) != 1 || report.Picks[0].Symbol != "RISE" {
		t.Fatalf("expected RISE as only pick, got %+v", report.Picks)
	}
	if len(rec.scans) != 1 {
		t.Fatalf("expected 1 recorded scan, got %d", len(rec.scans))
	}
	if sc := rec.scans[0]; sc.Analyzed != 1 || sc.Failed != 2 || rec.picks != 1 {
		t.Errorf("unexpected scan summary %+v with %d picks", sc, rec.picks)
	}
	if len(n.sent) != 1 || !strings.Contains(n.sent[0], "Stock Recommendations") {
		t.Errorf("expected one recommendation message, got %q", n.sent)
	}
}

func TestScanTask_SkipsNonTradingDay(t *testing.T) {
	s, n, rec := newTestScheduler(t)
	s.now = func() time.Time { return time.Date(2024, 6, 8, 16, 30, 0, 0, time.UTC) } // Saturday
	s.scanTask()
	if len(rec.scans) != 0 || len(n.sent) != 0 {
		t.Errorf("expected no scan on a weekend, got %d scans and %d messages", len(rec.scans), len(n.sent))
	}

	s.now = func() time.Time { return time.Date(2024, 6, 10, 16, 30, 0, 0, time.UTC) } // Monday
	s.scanTask()
	if len(rec.scans) != 1 {
		t.Errorf("expected a scan on a weekday, got %d", len(rec.scans))
	}
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	if err := s.RegisterAll("0 30 16 * * 1-5"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected 1 cron entry, got %d", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestNewScheduler_CronLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		name string
		cal  *TradingCalendar
		want *time.Location
	}{
		{"calendar timezone", &TradingCalendar{Fallback: true, Timezone: ist}, ist},
		{"utc calendar", &TradingCalendar{Fallback: true, Timezone: time.UTC}, time.UTC},
		{"no calendar", nil, time.Local},
	}
	for _, tt := range tests {
		s := NewScheduler(context.Background(), nil, nil, nil, nil, tt.cal, Options{})
		if got := s.Cron.Location(); got != tt.want {
			t.Errorf("%s: expected location %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestHandleCommand(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	ctx := context.Background()

	tests := []struct {
		command string
		args    []string
		want    string
	}{
		{"analyze", []string{"rise"}, "<b>RISE</b>"},
		{"analyze", nil, "Usage: /analyze SYMBOL"},
		{"analyze", []string{"ONE"}, "Not enough history for ONE"},
		{"analyze", []string{"DOWN"}, "Could not fetch DOWN"},
		{"recommend", []string{"high"}, "No recommendations matched."},
		{"recommend", []string{"extreme"}, "Confidence must be Low, Medium or High"},
		{"news", []string{"rise"}, "Results beat estimates"},
		{"news", []string{"FAIL"}, "News for FAIL unavailable"},
		{"help", nil, "Available commands"},
		{"unknown", nil, "Available commands"},
	}
	for _, tt := range tests {
		got := s.HandleCommand(ctx, tt.command, tt.args)
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s %v: expected %q in reply, got %q", tt.command, tt.args, tt.want, got)
		}
	}
	if len(rec.analyses) != 1 || rec.analyses[0] != "RISE" {
		t.Errorf("expected analyze to record RISE, got %v", rec.analyses)
	}
}

func TestTradingCalendar_Fallback(t *testing.T) {
	tc := &TradingCalendar{Fallback: true, Timezone: time.UTC}
	if tc.IsTradingDay(time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)) {
		t.Error("expected Sunday to be closed")
	}
	if !tc.IsTradingDay(time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)) {
		t.Error("expected Tuesday to be open")
	}
	if NewTradingCalendar("") == nil {
		t.Error("expected a calendar for the default MIC")
	}
}
