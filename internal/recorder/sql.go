package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"StockSentinel/internal/model"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Supported database/sql drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLRecorder persists analyses to SQLite or PostgreSQL.
type SQLRecorder struct {
	db     *sql.DB
	driver string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLRecorder opens (or creates) the database and runs migrations.
func NewSQLRecorder(driver, dsn string) (*SQLRecorder, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection keeps :memory: databases shared and serializes writers.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	r := &SQLRecorder{
		db:     db,
		driver: driver,
		logger: log.With().Str("component", "recorder").Str("driver", driver).Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Msg("sql recorder opened")
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if r.driver == DriverPostgres {
		idCol = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id             ` + idCol + `,
			started_at     BIGINT NOT NULL,
			kind           TEXT,
			duration_ms    BIGINT,
			min_confidence TEXT,
			analyzed       INTEGER,
			buy_signals    INTEGER,
			sell_signals   INTEGER,
			failed         INTEGER,
			sentiment      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_ts ON scans(started_at)`,

		`CREATE TABLE IF NOT EXISTS analyses (
			id              ` + idCol + `,
			timestamp       BIGINT NOT NULL,
			scan_id         BIGINT,
			symbol          TEXT NOT NULL,
			recommendation  TEXT,
			confidence      TEXT,
			technical_score INTEGER,
			last_price      DOUBLE PRECISION,
			price_change    DOUBLE PRECISION,
			rsi_signal      TEXT,
			macd_signal     TEXT,
			bb_signal       TEXT,
			ma_signal       TEXT,
			overall_signal  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(s), err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1..$n for PostgreSQL.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

const insertAnalysis = `INSERT INTO analyses
	(timestamp, scan_id, symbol, recommendation, confidence, technical_score,
	 last_price, price_change, rsi_signal, macd_signal, bb_signal, ma_signal, overall_signal)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLRecorder) insertAnalysis(ctx context.Context, ex execer, scanID sql.NullInt64, a *model.Analysis) error {
	ts := a.AsOf
	if ts.IsZero() {
		ts = time.Now()
	}
	s := a.SignalSummary
	_, err := ex.ExecContext(ctx, rebind(r.driver, insertAnalysis),
		ts.Unix(), scanID, a.Symbol, string(a.Recommendation), string(a.Confidence), a.TechnicalScore,
		a.LastPrice, a.PriceChange,
		string(s.RSI), string(s.MACD), string(s.BB), string(s.MA), string(s.Overall),
	)
	return err
}

func (r *SQLRecorder) RecordAnalysis(ctx context.Context, a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertAnalysis(ctx, r.db, sql.NullInt64{}, a)
}

// RecordScan stores the scan outline and its picks in one transaction.
func (r *SQLRecorder) RecordScan(ctx context.Context, scan *ScanSummary, picks []model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, rebind(r.driver, `INSERT INTO scans
		(started_at, kind, duration_ms, min_confidence, analyzed, buy_signals, sell_signals, failed, sentiment)
		VALUES (?,?,?,?,?,?,?,?,?) RETURNING id`),
		scan.StartedAt.Unix(), scan.Kind, scan.Duration.Milliseconds(), string(scan.MinConfidence),
		scan.Analyzed, scan.BuySignals, scan.SellSignals, scan.Failed, string(scan.Sentiment),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	scanID := sql.NullInt64{Int64: id, Valid: true}
	for i := range picks {
		if err := r.insertAnalysis(ctx, tx, scanID, &picks[i]); err != nil {
			return fmt.Errorf("insert pick %s: %w", picks[i].Symbol, err)
		}
	}
	return tx.Commit()
}

// History returns the most recent stored analyses for a symbol, newest first.
func (r *SQLRecorder) History(ctx context.Context, symbol string, limit int) ([]model.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, rebind(r.driver, `SELECT
		timestamp, symbol, recommendation, confidence, technical_score, last_price, price_change,
		rsi_signal, macd_signal, bb_signal, ma_signal, overall_signal
		FROM analyses WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`), symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.Analysis
	for rows.Next() {
		var (
			a                            model.Analysis
			ts                           int64
			rec, conf, rsi, macd, bb, ma string
			overall                      string
		)
		if err := rows.Scan(&ts, &a.Symbol, &rec, &conf, &a.TechnicalScore, &a.LastPrice, &a.PriceChange,
			&rsi, &macd, &bb, &ma, &overall); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		a.AsOf = time.Unix(ts, 0).UTC()
		a.Recommendation = model.Recommendation(rec)
		a.Confidence = model.Confidence(conf)
		a.SignalSummary = model.SignalSummary{
			RSI: model.Label(rsi), MACD: model.Label(macd), BB: model.Label(bb), MA: model.Label(ma),
			Overall: model.Label(overall),
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLRecorder) Close() error {
	r.logger.Info().Msg("closing sql recorder")
	return r.db.Close()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
