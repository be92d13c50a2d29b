package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockSentinel/internal/model"
)

const eps = 1e-9

func approx(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= eps
}

func assertColumn(t *testing.T, name string, got model.Column, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected length %d, got %d", name, len(want), len(got))
	}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("%s[%d]: expected %v, got %v", name, i, want[i], got[i])
		}
	}
}

func seriesFromCloses(closes []float64, volume float64) *model.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: volume,
		}
	}
	return model.NewPriceSeries("TEST", bars)
}

var nan = math.NaN()

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	assertColumn(t, "sma", got, []float64{nan, nan, 2, 3, 4})
}

func TestSMA_WindowLongerThanSeries(t *testing.T) {
	got := SMA([]float64{1, 2}, 3)
	assertColumn(t, "sma", got, []float64{nan, nan})
}

func TestEMA(t *testing.T) {
	got := EMA([]float64{100, 102, 104, 103, 105}, 3)
	assertColumn(t, "ema", got, []float64{100, 101, 102.5, 102.75, 103.875})
}

func TestEMA_SkipsLeadingUndefined(t *testing.T) {
	got := EMA([]float64{nan, nan, 10, 20}, 3)
	assertColumn(t, "ema", got, []float64{nan, nan, 10, 15})
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   []float64
	}{
		{"mixed", []float64{10, 11, 10, 12, 13}, []float64{nan, nan, 50, 75, 75}},
		{"all rising", []float64{1, 2, 3, 4, 5}, []float64{nan, nan, 100, 100, 100}},
		{"all falling", []float64{5, 4, 3, 2, 1}, []float64{nan, nan, 0, 0, 0}},
		{"flat", []float64{7, 7, 7, 7}, []float64{nan, nan, 100, 100}},
		{"too short", []float64{1, 2}, []float64{nan, nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertColumn(t, "rsi", RSI(tt.closes, 3), tt.want)
		})
	}
}

// The first bar has no delta and counts as zero, so a full window of bars
// yields a value averaged over window-1 real deltas.
func TestRSI_FirstValueAtWindowMinusOne(t *testing.T) {
	closes := make([]float64, 14)
	for i := range closes {
		closes[i] = float64(100 + i%3)
	}
	rsi := RSI(closes, 14)
	if model.Defined(rsi[12]) {
		t.Errorf("expected rsi[12] undefined, got %v", rsi[12])
	}
	// gains 9/14, losses 8/14 -> RS 9/8
	if want := 900.0 / 17.0; !approx(rsi[13], want) {
		t.Errorf("expected rsi[13] = %v, got %v", want, rsi[13])
	}
	if short := RSI(closes[:13], 14); model.Defined(short[12]) {
		t.Errorf("expected 13 bars to stay undefined, got %v", short[12])
	}
}

func TestMACD_TwoBars(t *testing.T) {
	line, sig, hist := MACD([]float64{100, 101}, 12, 26, 9)
	wantLine := 28.0 / 351.0
	assertColumn(t, "macd", line, []float64{0, wantLine})
	assertColumn(t, "signal", sig, []float64{0, 0.2 * wantLine})
	assertColumn(t, "hist", hist, []float64{0, 0.8 * wantLine})
}

func TestMACD_SingleBarUndefined(t *testing.T) {
	line, sig, hist := MACD([]float64{100}, 12, 26, 9)
	for name, col := range map[string]model.Column{"macd": line, "signal": sig, "hist": hist} {
		if len(col) != 1 || model.Defined(col[0]) {
			t.Errorf("%s: expected one undefined value, got %v", name, col)
		}
	}
}

func TestBollinger_SampleDeviation(t *testing.T) {
	upper, middle, lower := Bollinger([]float64{1, 2, 3}, 3, 2)
	assertColumn(t, "upper", upper, []float64{nan, nan, 4})
	assertColumn(t, "middle", middle, []float64{nan, nan, 2})
	assertColumn(t, "lower", lower, []float64{nan, nan, 0})
}

func TestTrailingMean(t *testing.T) {
	tests := []struct {
		values []float64
		window int
		want   float64
	}{
		{[]float64{1, 2, 3, 4}, 2, 3.5},
		{[]float64{1, 2, 3, 4}, 20, 2.5},
		{[]float64{5}, 20, 5},
	}
	for _, tt := range tests {
		if got := TrailingMean(tt.values, tt.window); !approx(got, tt.want) {
			t.Errorf("TrailingMean(%v, %d): expected %v, got %v", tt.values, tt.window, tt.want, got)
		}
	}
	if got := TrailingMean(nil, 20); !math.IsNaN(got) {
		t.Errorf("expected NaN for empty input, got %v", got)
	}
}

func TestAddIndicators_Empty(t *testing.T) {
	_, err := AddIndicators(model.NewPriceSeries("EMPTY", nil))
	if !errors.Is(err, model.ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestAddIndicators_SingleBar(t *testing.T) {
	f, err := AddIndicators(seriesFromCloses([]float64{100}, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, col := range map[string]model.Column{
		"rsi": f.RSI, "macd": f.MACD, "macd_signal": f.MACDSignal, "macd_hist": f.MACDHist,
		"bb_upper": f.BBUpper, "bb_middle": f.BBMiddle, "bb_lower": f.BBLower,
	} {
		if model.Defined(col[0]) {
			t.Errorf("%s: expected undefined on single bar, got %v", name, col[0])
		}
	}
}

func TestAddIndicators_ConstantSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	f, err := AddIndicators(seriesFromCloses(closes, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := MAWindow - 1; i < len(closes); i++ {
		if f.SMA20[i] != 100 || f.EMA20[i] != 100 {
			t.Errorf("bar %d: expected SMA20 == EMA20 == 100, got %v / %v", i, f.SMA20[i], f.EMA20[i])
		}
	}
	for i := RSIWindow - 1; i < len(closes); i++ {
		if f.RSI[i] != 100 {
			t.Errorf("bar %d: expected RSI 100 on flat series, got %v", i, f.RSI[i])
		}
	}
	if f.MACD.Last() != 0 || f.MACDSignal.Last() != 0 {
		t.Errorf("expected zero MACD on flat series, got %v / %v", f.MACD.Last(), f.MACDSignal.Last())
	}
}

func TestAddIndicators_MonotonicIncreasing(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	f, err := AddIndicators(seriesFromCloses(closes, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.MACD.Last() <= 0 {
		t.Errorf("expected positive MACD on rising series, got %v", f.MACD.Last())
	}
	for i := MAWindow - 1; i < len(closes); i++ {
		if !(f.Close[i] > f.SMA20[i]) {
			t.Errorf("bar %d: expected close above SMA20", i)
		}
	}
}

func TestAddIndicators_DoesNotMutateInput(t *testing.T) {
	s := seriesFromCloses([]float64{1, 2, 3}, 10)
	f, err := AddIndicators(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Close[0] = 99
	if s.Close[0] != 1 {
		t.Errorf("frame shares storage with input series")
	}
}

func TestPeriodRange(t *testing.T) {
	s := seriesFromCloses([]float64{10, 20, 15}, 1)
	r, err := PeriodRange(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.High != 21 || r.Low != 9 {
		t.Errorf("expected high 21 low 9, got %v %v", r.High, r.Low)
	}
	if !approx(r.Position, 0.5) {
		t.Errorf("expected position 0.5, got %v", r.Position)
	}
	if _, err := PeriodRange(model.NewPriceSeries("X", nil)); !errors.Is(err, model.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}
