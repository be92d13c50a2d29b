package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockSentinel/internal/model"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"symbol":"RELIANCE.NS","currency":"INR","fullExchangeName":"NSE","longName":"Reliance Industries Limited","regularMarketVolume":1234567},
  "timestamp":[1700179200,1700006400,1700092800,1700265600],
  "indicators":{"quote":[{
    "open":[103,101,102,null],
    "high":[104,102,103,null],
    "low":[102,100,101,null],
    "close":[103.5,101.5,102.5,null],
    "volume":[3000,1000,2000,null]
  }]}
}],"error":null}}`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYahooFetcher(YahooOptions{BaseURL: srv.URL, Suffix: ".NS", RequestsPerSecond: 100})
}

func TestYahooFetcher_FetchChart(t *testing.T) {
	var gotPath, gotQuery string
	f := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(chartJSON))
	})

	chart, err := f.FetchChart(context.Background(), "RELIANCE", model.Period1Y, model.Interval1D)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v8/finance/chart/RELIANCE.NS" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "range=1y") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(chart.Bars) != 3 {
		t.Fatalf("expected 3 non-null bars, got %d", len(chart.Bars))
	}
	for i, want := range []float64{101.5, 102.5, 103.5} {
		if chart.Bars[i].Close != want {
			t.Errorf("bar %d: expected close %v, got %v", i, want, chart.Bars[i].Close)
		}
	}
	if chart.Instrument.Name != "Reliance Industries Limited" || chart.Instrument.Exchange != "NSE" {
		t.Errorf("unexpected instrument %+v", chart.Instrument)
	}
	if chart.Instrument.MarketVolume != 1234567 {
		t.Errorf("expected market volume 1234567, got %v", chart.Instrument.MarketVolume)
	}
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}},
		{"decode", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"api error", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestYahoo(t, tt.handler)
			if _, err := f.FetchChart(context.Background(), "XYZ", model.Period1Mo, model.Interval1D); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestYahooFetcher_Ticker(t *testing.T) {
	f := NewYahooFetcher(YahooOptions{Suffix: ".NS"})
	tests := []struct{ in, want string }{
		{"TCS", "TCS.NS"},
		{"TCS.BO", "TCS.BO"},
		{"^NSEI", "^NSEI"},
	}
	for _, tt := range tests {
		if got := f.Ticker(tt.in); got != tt.want {
			t.Errorf("Ticker(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestCollector_Collect(t *testing.T) {
	boom := errors.New("connection refused")
	c := NewCollector(&MockFetcher{
		Price: 500,
		Bars:  40,
		Data:  map[string][]model.OHLCV{"EMPTY": {}},
		FailSymbols: map[string]error{
			"DOWN": boom,
		},
	}, nil)
	ctx := context.Background()

	series, inst, err := c.Collect(ctx, "INFY", model.Period3Mo, model.Interval1D)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Len() != 40 || inst.Symbol != "INFY" {
		t.Errorf("expected 40 bars for INFY, got %d for %s", series.Len(), inst.Symbol)
	}

	if _, _, err := c.Collect(ctx, "DOWN", model.Period3Mo, model.Interval1D); !errors.Is(err, model.ErrFetchFailure) || !errors.Is(err, boom) {
		t.Errorf("expected wrapped fetch failure, got %v", err)
	}
	if _, _, err := c.Collect(ctx, "EMPTY", model.Period3Mo, model.Interval1D); !errors.Is(err, model.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestCollector_RejectsUnorderedBars(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	c := NewCollector(&MockFetcher{Data: map[string][]model.OHLCV{
		"DUP": {{Time: t0, Close: 1}, {Time: t0, Close: 2}},
	}}, nil)
	if _, _, err := c.Collect(context.Background(), "DUP", model.Period1Mo, model.Interval1D); !errors.Is(err, model.ErrFetchFailure) {
		t.Errorf("expected ErrFetchFailure for duplicate timestamps, got %v", err)
	}
}

func TestReadSymbols(t *testing.T) {
	in := "Symbol\nRELIANCE\n\ntcs\n  INFY  \n,\n"
	got, err := ReadSymbols(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"RELIANCE", "TCS", "INFY"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestLoadSymbols_MissingFile(t *testing.T) {
	if _, err := LoadSymbols("does/not/exist.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}
