package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockSentinel/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

// Redis key layout.
const (
	latestKeyPrefix = "analysis:latest:"
	scanKey         = "scan:latest"
	// AnalysisChannel carries every recorded analysis as JSON.
	AnalysisChannel = "analysis:updates"
)

// RedisRecorder caches the latest analysis per symbol and publishes updates.
type RedisRecorder struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisRecorder connects and pings the server.
func NewRedisRecorder(ctx context.Context, opts *goredis.Options, ttl time.Duration) (*RedisRecorder, error) {
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return NewRedisRecorderFromClient(rdb, ttl), nil
}

// NewRedisRecorderFromClient wraps an existing client.
func NewRedisRecorderFromClient(rdb *goredis.Client, ttl time.Duration) *RedisRecorder {
	return &RedisRecorder{rdb: rdb, ttl: ttl}
}

// LatestKey is where the newest analysis for symbol is cached.
func LatestKey(symbol string) string { return latestKeyPrefix + symbol }

func (r *RedisRecorder) RecordAnalysis(ctx context.Context, a *model.Analysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, LatestKey(a.Symbol), payload, r.ttl)
	pipe.Publish(ctx, AnalysisChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record %s: %w", a.Symbol, err)
	}
	return nil
}

type scanPayload struct {
	Kind          string           `json:"kind"`
	StartedAt     time.Time        `json:"started_at"`
	DurationMS    int64            `json:"duration_ms"`
	MinConfidence model.Confidence `json:"min_confidence"`
	Analyzed      int              `json:"analyzed"`
	BuySignals    int              `json:"buy_signals"`
	SellSignals   int              `json:"sell_signals"`
	Failed        int              `json:"failed"`
	Sentiment     model.Label      `json:"sentiment"`
	Picks         []model.Analysis `json:"picks"`
}

func (r *RedisRecorder) RecordScan(ctx context.Context, scan *ScanSummary, picks []model.Analysis) error {
	payload, err := json.Marshal(scanPayload{
		Kind:          scan.Kind,
		StartedAt:     scan.StartedAt,
		DurationMS:    scan.Duration.Milliseconds(),
		MinConfidence: scan.MinConfidence,
		Analyzed:      scan.Analyzed,
		BuySignals:    scan.BuySignals,
		SellSignals:   scan.SellSignals,
		Failed:        scan.Failed,
		Sentiment:     scan.Sentiment,
		Picks:         picks,
	})
	if err != nil {
		return fmt.Errorf("marshal scan: %w", err)
	}
	if err := r.rdb.Set(ctx, scanKey, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis record scan: %w", err)
	}
	for i := range picks {
		if err := r.RecordAnalysis(ctx, &picks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisRecorder) Close() error {
	return r.rdb.Close()
}
