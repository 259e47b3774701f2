package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skalibog/mtfsignal/internal/analysis/aggregator"
	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/internal/notification"
	"github.com/skalibog/mtfsignal/internal/scanner"
	"github.com/skalibog/mtfsignal/internal/storage"
	"github.com/skalibog/mtfsignal/pkg/logger"
	"github.com/skalibog/mtfsignal/pkg/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	shutdownTimeout     = 5 * time.Second
)

// SymbolAnalyzer анализ одного символа по запросу
type SymbolAnalyzer interface {
	AnalyzeSymbol(ctx context.Context, symbol string) (*models.Signal, error)
}

// ScanMessage результат сканирования для REST и websocket
type ScanMessage struct {
	Type      string           `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Signals   []*models.Signal `json:"signals"`
}

// ManualResponse ответ ручного анализа
type ManualResponse struct {
	Signal        *models.Signal `json:"signal"`
	Message       string         `json:"message"`
	LowConfidence bool           `json:"low_confidence"`
}

// Server HTTP-сервер: проверка живости, REST API сигналов и websocket-поток
type Server struct {
	cfg           config.ServerConfig
	engine        *gin.Engine
	analyzer      SymbolAnalyzer
	storage       storage.Storage
	minConfidence int
	now           func() time.Time

	// websocket-клиенты
	clients    map[*client]struct{}
	broadcast  chan *ScanMessage
	register   chan *client
	unregister chan *client
	hubDone    chan struct{}

	stateMutex sync.RWMutex
	latest     *ScanMessage
}

// New создает сервер
func New(cfg config.ServerConfig, analyzer SymbolAnalyzer, store storage.Storage, minConfidence int) *Server {
	if store == nil {
		store = storage.NopStorage{}
	}

	s := &Server{
		cfg:           cfg,
		engine:        gin.New(),
		analyzer:      analyzer,
		storage:       store,
		minConfidence: minConfidence,
		now:           time.Now,
		clients:       make(map[*client]struct{}),
		broadcast:     make(chan *ScanMessage, 16),
		register:      make(chan *client),
		unregister:    make(chan *client),
		hubDone:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.getRoot)
	s.engine.GET("/health", s.getHealth)

	api := s.engine.Group("/api")
	api.GET("/signals", s.getSignals)
	api.GET("/signals/:symbol/history", s.getHistory)
	api.GET("/analyze/:symbol", s.getAnalyze)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler возвращает http.Handler сервера
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run запускает хаб и HTTP-сервер до отмены контекста
func (s *Server) Run(ctx context.Context) error {
	go s.runHub(ctx)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("SERVER: Запуск HTTP-сервера", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP-сервера: %w", err)
	}
	logger.Info("SERVER: HTTP-сервер остановлен")
	return nil
}

// Publish принимает результаты сканирования (scanner.Sink)
func (s *Server) Publish(signals []*models.Signal) {
	message := &ScanMessage{
		Type:      "SCAN",
		Timestamp: s.now(),
		Signals:   signals,
	}
	if message.Signals == nil {
		message.Signals = []*models.Signal{}
	}

	select {
	case s.broadcast <- message:
	default:
		logger.Warn("SERVER: Очередь рассылки переполнена, результат сканирования пропущен")
	}
}

func (s *Server) latestScan() *ScanMessage {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.latest
}

func (s *Server) getRoot(c *gin.Context) {
	c.String(http.StatusOK, "mtfsignal работает")
}

func (s *Server) getHealth(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if latest := s.latestScan(); latest != nil {
		body["last_scan"] = latest.Timestamp
		body["signals"] = len(latest.Signals)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) getSignals(c *gin.Context) {
	latest := s.latestScan()
	if latest == nil {
		c.JSON(http.StatusOK, &ScanMessage{Type: "SCAN", Signals: []*models.Signal{}})
		return
	}
	c.JSON(http.StatusOK, latest)
}

func (s *Server) getHistory(c *gin.Context) {
	symbol := scanner.NormalizeSymbol(c.Param("symbol"))

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	signals, err := s.storage.GetSignalHistory(c.Request.Context(), symbol, limit)
	switch {
	case errors.Is(err, storage.ErrHistoryUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Error("SERVER: Ошибка чтения истории", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ошибка чтения истории"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "signals": signals})
}

func (s *Server) getAnalyze(c *gin.Context) {
	symbol := scanner.NormalizeSymbol(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не указан символ"})
		return
	}

	signal, err := s.analyzer.AnalyzeSymbol(c.Request.Context(), symbol)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, aggregator.ErrNoData):
			status = http.StatusNotFound
		case errors.Is(err, aggregator.ErrAnalysisFault):
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": err.Error(), "message": notification.FormatNoData(symbol)})
		return
	}

	c.JSON(http.StatusOK, &ManualResponse{
		Signal:        signal,
		Message:       notification.FormatManual(signal, s.minConfidence, ""),
		LowConfidence: signal.Confidence < s.minConfidence,
	})
}

// requestLogger пишет запросы в zap
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("SERVER: Запрос",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
