package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/config"
	"StockSentinel/internal/logging"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
	"StockSentinel/internal/news"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/scanner"
	"StockSentinel/internal/scheduler"
	"StockSentinel/internal/server"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("StockSentinel starting")

	symbols, err := collector.LoadSymbols(cfg.SymbolsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load symbols")
	}
	log.Info().Int("symbols", len(symbols)).Str("file", cfg.SymbolsFile).Msg("symbol list loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL == "mock" {
		fetcher = &collector.MockFetcher{}
	} else {
		fetcher = collector.NewYahooFetcher(collector.YahooOptions{
			BaseURL:           cfg.DataSource.BaseURL,
			Suffix:            cfg.DataSource.ExchangeSuffix,
			ProxyURL:          cfg.Proxy,
			Timeout:           time.Duration(cfg.DataSource.TimeoutSeconds) * time.Second,
			RequestsPerSecond: cfg.DataSource.RequestsPerSecond,
		})
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	col := collector.NewCollector(fetcher, m)
	sc := scanner.NewScanner(col, m, cfg.Scan.Concurrency)
	nc := news.NewClient(cfg.News.BaseURL, cfg.News.MaxItems, cfg.Proxy)

	// Init recorders
	var sqlRec *recorder.SQLRecorder
	recs := recorder.Multi{}
	if cfg.Database.Driver != "none" {
		if cfg.Database.Driver == recorder.DriverSQLite {
			if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0o755); err != nil {
				log.Warn().Err(err).Msg("create database directory")
			}
		}
		sqlRec, err = recorder.NewSQLRecorder(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			log.Warn().Err(err).Msg("init sql recorder failed, history disabled")
		} else {
			recs = append(recs, sqlRec)
		}
	}
	if cfg.Redis.Addr != "" {
		rr, err := recorder.NewRedisRecorder(ctx, &goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		if err != nil {
			log.Warn().Err(err).Msg("init redis recorder failed, cache disabled")
		} else {
			recs = append(recs, rr)
		}
	}
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if len(recs) > 0 {
		rec = recs
	}
	defer rec.Close()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sink scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			log.Error().Err(err).Msg("telegram disabled")
			tn = nil
		} else {
			sink = tn
		}
	}

	sched := scheduler.NewScheduler(ctx, sc, nc, sink, rec, scheduler.NewTradingCalendar(cfg.Scan.ExchangeMIC), scheduler.Options{
		Symbols:       symbols,
		Period:        model.Period(cfg.Scan.RecommendPeriod),
		Interval:      model.Interval(cfg.Scan.RecommendInterval),
		MinConfidence: model.Confidence(cfg.Scan.MinConfidence),
		TopPicks:      cfg.Scan.TopPicks,
	})
	if err := sched.RegisterAll(cfg.Scan.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go func() {
			if err := tn.StartPolling(ctx, sched.HandleCommand); err != nil {
				log.Error().Err(err).Msg("telegram polling")
			}
		}()
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running scan now")
		go func() {
			if _, err := sched.RunScanNow(); err != nil {
				log.Error().Err(err).Msg("startup scan")
			}
		}()
	}

	var history server.HistoryStore
	if sqlRec != nil {
		history = sqlRec
	}
	api := server.New(sc, nc, history, server.Options{
		Symbols:           symbols,
		ScreenerPeriod:    model.Period(cfg.Scan.ScreenerPeriod),
		ScreenerInterval:  model.Interval(cfg.Scan.ScreenerInterval),
		RecommendPeriod:   model.Period(cfg.Scan.RecommendPeriod),
		RecommendInterval: model.Interval(cfg.Scan.RecommendInterval),
		MinConfidence:     model.Confidence(cfg.Scan.MinConfidence),
		Gatherer:          reg,
		Debug:             cfg.LogLevel == "debug",
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("StockSentinel stopped")
}
