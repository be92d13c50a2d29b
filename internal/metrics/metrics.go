package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the analysis service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysesTotal   *prometheus.CounterVec   // labels: result
	FetchDuration   *prometheus.HistogramVec // labels: source
	FetchFailures   *prometheus.CounterVec   // labels: source
	ScanDuration    *prometheus.HistogramVec // labels: kind
	SymbolsFailed   *prometheus.CounterVec   // labels: kind
	BuySignalsRatio prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksentinel_analyses_total",
			Help: "Symbol analyses by recommendation or failure kind",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stocksentinel_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksentinel_fetch_failures_total",
			Help: "Market data fetches that returned an error",
		}, []string{"source"}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stocksentinel_scan_duration_seconds",
			Help:    "Wall time of batch screener and recommendation scans",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"kind"}),
		SymbolsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksentinel_scan_symbols_failed_total",
			Help: "Symbols skipped during scans by failure kind",
		}, []string{"kind"}),
		BuySignalsRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksentinel_last_scan_buy_ratio",
			Help: "Share of analyzed symbols with a buy recommendation in the last scan (0-1)",
		}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.FetchDuration,
		m.FetchFailures,
		m.ScanDuration,
		m.SymbolsFailed,
		m.BuySignalsRatio,
	)
	return m
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.FetchFailures.WithLabelValues(source).Inc()
	}
}

// ObserveAnalysis counts one analysis outcome.
func (m *Metrics) ObserveAnalysis(result string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(result).Inc()
}

// ObserveScan records a finished scan.
func (m *Metrics) ObserveScan(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScanDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveSymbolFailure counts a skipped symbol.
func (m *Metrics) ObserveSymbolFailure(kind string) {
	if m == nil {
		return
	}
	m.SymbolsFailed.WithLabelValues(kind).Inc()
}

// SetBuyRatio stores the buy share of the latest recommendation scan.
func (m *Metrics) SetBuyRatio(ratio float64) {
	if m == nil {
		return
	}
	m.BuySignalsRatio.Set(ratio)
}
