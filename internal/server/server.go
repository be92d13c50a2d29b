package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"StockSentinel/internal/model"
	"StockSentinel/internal/scanner"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewsSource fetches headlines.
type NewsSource interface {
	Fetch(ctx context.Context, symbol string) ([]model.NewsItem, error)
	FetchAll(ctx context.Context, symbols []string) []model.NewsItem
}

// HistoryStore returns recorded analyses for a symbol, newest first.
type HistoryStore interface {
	History(ctx context.Context, symbol string, limit int) ([]model.Analysis, error)
}

// Options configures the HTTP API.
type Options struct {
	Symbols           []string
	ScreenerPeriod    model.Period
	ScreenerInterval  model.Interval
	RecommendPeriod   model.Period
	RecommendInterval model.Interval
	MinConfidence     model.Confidence
	Gatherer          prometheus.Gatherer
	Debug             bool
}

// Server exposes the analysis pipeline over HTTP and WebSocket.
type Server struct {
	Scanner *scanner.Scanner
	News    NewsSource
	History HistoryStore
	Options Options
	engine  *gin.Engine
	logger  zerolog.Logger
}

// New builds the router. news and history may be nil.
func New(sc *scanner.Scanner, news NewsSource, history HistoryStore, opts Options) *Server {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		Scanner: sc,
		News:    news,
		History: history,
		Options: opts,
		engine:  gin.New(),
		logger:  log.With().Str("component", "server").Logger(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger(), cors())
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler for use with http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/symbols", s.getSymbols)
	api.GET("/analysis/:symbol", s.getAnalysis)
	api.GET("/screener", s.getScreener)
	api.GET("/recommendations", s.getRecommendations)
	api.GET("/news", s.getNews)
	api.GET("/history/:symbol", s.getHistory)

	s.engine.GET("/ws/recommendations", s.handleRecommendationsWS)

	if s.Options.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Options.Gatherer, promhttp.HandlerOpts{})))
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrFetchFailure):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrEmptySeries):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scanner.ErrNoCriteria):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"symbols": len(s.Options.Symbols),
	})
}

func (s *Server) getSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symbols": s.Options.Symbols})
}

// window reads period and interval query parameters with fallbacks.
func window(c *gin.Context, period model.Period, interval model.Interval) (model.Period, model.Interval, error) {
	if v := c.Query("period"); v != "" {
		p, err := model.ParsePeriod(v)
		if err != nil {
			return "", "", err
		}
		period = p
	}
	if v := c.Query("interval"); v != "" {
		i, err := model.ParseInterval(v)
		if err != nil {
			return "", "", err
		}
		interval = i
	}
	return period, interval, nil
}

func (s *Server) getAnalysis(c *gin.Context) {
	period, interval, err := window(c, s.Options.RecommendPeriod, s.Options.RecommendInterval)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	symbol := strings.ToUpper(c.Param("symbol"))
	d, err := s.Scanner.Analyze(c.Request.Context(), symbol, period, interval)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// criteriaParam accepts repeated or comma-separated criteria.
func criteriaParam(c *gin.Context) ([]scanner.Criterion, error) {
	var out []scanner.Criterion
	for _, raw := range c.QueryArray("criteria") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			cr, err := scanner.ParseCriterion(part)
			if err != nil {
				return nil, err
			}
			out = append(out, cr)
		}
	}
	return out, nil
}

func (s *Server) getScreener(c *gin.Context) {
	criteria, err := criteriaParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	period, interval, err := window(c, s.Options.ScreenerPeriod, s.Options.ScreenerInterval)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	report, err := s.Scanner.Screen(c.Request.Context(), s.Options.Symbols, criteria, scanner.ScreenOptions{
		Period: period, Interval: interval,
	})
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) recommendOptions(c *gin.Context) (scanner.RecommendOptions, error) {
	period, interval, err := window(c, s.Options.RecommendPeriod, s.Options.RecommendInterval)
	if err != nil {
		return scanner.RecommendOptions{}, err
	}
	minConf := s.Options.MinConfidence
	if v := c.Query("min_confidence"); v != "" {
		conf, ok := model.ParseConfidence(v)
		if !ok {
			return scanner.RecommendOptions{}, errors.New("min_confidence must be Low, Medium or High")
		}
		minConf = conf
	}
	return scanner.RecommendOptions{Period: period, Interval: interval, MinConfidence: minConf}, nil
}

func (s *Server) getRecommendations(c *gin.Context) {
	opts, err := s.recommendOptions(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	report, err := s.Scanner.Recommend(c.Request.Context(), s.Options.Symbols, opts, nil)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) getNews(c *gin.Context) {
	if s.News == nil {
		abortWithError(c, http.StatusNotImplemented, errors.New("news is not configured"))
		return
	}
	if symbol := c.Query("symbol"); symbol != "" {
		items, err := s.News.Fetch(c.Request.Context(), strings.ToUpper(symbol))
		if err != nil {
			abortWithError(c, http.StatusBadGateway, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": s.News.FetchAll(c.Request.Context(), s.Options.Symbols)})
}

func (s *Server) getHistory(c *gin.Context) {
	if s.History == nil {
		abortWithError(c, http.StatusNotImplemented, errors.New("history store is not configured"))
		return
	}
	limit := 30
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			abortWithError(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	rows, err := s.History.History(c.Request.Context(), strings.ToUpper(c.Param("symbol")), limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}
