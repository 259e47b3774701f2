// Package scanner периодически сканирует список символов и рассылает сигналы.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/internal/notification"
	"github.com/skalibog/mtfsignal/pkg/logger"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// ErrOutsideWindow сканирование вне рабочего окна пропущено
var ErrOutsideWindow = errors.New("вне рабочего окна")

const quoteAsset = "USDT"

// SignalGenerator формирует сигналы по списку символов
type SignalGenerator interface {
	GenerateSignals(ctx context.Context, symbols []string) ([]*models.Signal, error)
}

// Sink получает результаты каждого сканирования
type Sink interface {
	Publish(signals []*models.Signal)
}

// SinkFunc адаптер функции к Sink
type SinkFunc func(signals []*models.Signal)

func (f SinkFunc) Publish(signals []*models.Signal) { f(signals) }

// Scanner запускает сканирование по расписанию
type Scanner struct {
	cfg       config.ScannerConfig
	generator SignalGenerator
	notifier  *notification.Manager
	session   *notification.Session
	window    Window
	cron      *cron.Cron
	now       func() time.Time

	mu    sync.Mutex
	sinks []Sink
}

// New создает сканер
func New(cfg config.ScannerConfig, generator SignalGenerator, notifier *notification.Manager, session *notification.Session) (*Scanner, error) {
	window, err := ParseWindow(cfg.WindowStart, cfg.WindowEnd, cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ошибка настройки окна сканирования: %w", err)
	}

	return &Scanner{
		cfg:       cfg,
		generator: generator,
		notifier:  notifier,
		session:   session,
		window:    window,
		now:       time.Now,
	}, nil
}

// AddSink подписывает получателя результатов
func (s *Scanner) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// ShouldAlert: только LONG/SHORT с уверенностью в [minConfidence, 100]
func ShouldAlert(signal *models.Signal, minConfidence int) bool {
	if signal == nil || signal.Direction == models.DirectionNeutral {
		return false
	}
	return signal.Confidence >= minConfidence && signal.Confidence <= 100
}

// NormalizeSymbol переводит ввод пользователя в символ фьючерса: "btc " -> "BTCUSDT"
func NormalizeSymbol(input string) string {
	symbol := strings.ToUpper(strings.TrimSpace(input))
	if symbol == "" {
		return ""
	}
	if !strings.HasSuffix(symbol, quoteAsset) {
		symbol += quoteAsset
	}
	return symbol
}

// RunOnce выполняет одно сканирование: сигналы уходят всем подписчикам,
// подходящие отправляются получателю сессии.
func (s *Scanner) RunOnce(ctx context.Context) ([]*models.Signal, error) {
	now := s.now()
	if !s.window.Contains(now) {
		logger.Info("SCANNER: Вне рабочего окна, сканирование пропущено",
			zap.String("window", s.window.String()),
			zap.Time("time", now.In(s.window.Location())))
		return nil, ErrOutsideWindow
	}

	logger.Info("SCANNER: Начало сканирования", zap.Int("symbols", len(s.cfg.Symbols)))
	start := time.Now()

	signals, err := s.generator.GenerateSignals(ctx, s.cfg.Symbols)
	if err != nil {
		logger.Warn("SCANNER: Сканирование завершено с ошибкой", zap.Error(err))
	}

	s.publish(signals)

	alerts := 0
	switch {
	case s.session.Destination() == "":
		logger.Warn("SCANNER: Получатель не задан, сигналы не отправляются")
	case !s.notifier.Enabled():
		logger.Warn("SCANNER: Нет включенных провайдеров уведомлений, сигналы не отправляются")
	default:
		for _, signal := range signals {
			if !ShouldAlert(signal, s.cfg.MinConfidence) {
				continue
			}
			if sendErr := s.notifier.SendSignal(ctx, s.session, signal); sendErr != nil {
				logger.Error("SCANNER: Ошибка отправки сигнала", zap.String("symbol", signal.Symbol), zap.Error(sendErr))
				continue
			}
			alerts++
		}
	}

	logger.Info("SCANNER: Сканирование завершено",
		zap.Int("signals", len(signals)),
		zap.Int("alerts", alerts),
		zap.Duration("duration", time.Since(start)))

	return signals, err
}

func (s *Scanner) publish(signals []*models.Signal) {
	s.mu.Lock()
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Publish(signals)
	}
}

// ResetDaily обнуляет счетчик сигналов и отправляет приветствие
func (s *Scanner) ResetDaily(ctx context.Context) {
	s.session.Reset()
	logger.Info("SCANNER: Дневной счетчик сигналов сброшен")

	if s.session.Destination() == "" || s.cfg.Greeting == "" || !s.notifier.Enabled() {
		return
	}
	if err := s.notifier.Send(ctx, s.session, "🌞 "+s.cfg.Greeting); err != nil {
		logger.Error("SCANNER: Ошибка отправки приветствия", zap.Error(err))
	}
}

// Start регистрирует задачи сканирования и сброса и запускает планировщик
func (s *Scanner) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.window.Location()),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)

	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("ошибка расписания сканирования %q: %w", s.cfg.Schedule, err)
	}

	if _, err := c.AddFunc(s.cfg.DailyReset, func() {
		s.ResetDaily(ctx)
	}); err != nil {
		return fmt.Errorf("ошибка расписания сброса %q: %w", s.cfg.DailyReset, err)
	}

	s.cron = c
	c.Start()

	logger.Info("SCANNER: Планировщик запущен",
		zap.String("schedule", s.cfg.Schedule),
		zap.String("daily_reset", s.cfg.DailyReset),
		zap.String("window", s.window.String()))
	return nil
}

// Stop останавливает планировщик и ждет завершения текущих задач
func (s *Scanner) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// cronLogger направляет логи планировщика в zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Debugw("CRON: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Errorw("CRON: "+msg, append(keysAndValues, "error", err)...)
}
