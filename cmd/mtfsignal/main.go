package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skalibog/mtfsignal/internal/analysis/aggregator"
	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/internal/exchange"
	"github.com/skalibog/mtfsignal/internal/notification"
	"github.com/skalibog/mtfsignal/internal/scanner"
	"github.com/skalibog/mtfsignal/internal/server"
	"github.com/skalibog/mtfsignal/internal/storage"
	"github.com/skalibog/mtfsignal/internal/ui"
	"github.com/skalibog/mtfsignal/pkg/logger"
)

func main() {
	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	scanNow := flag.Bool("scan-now", false, "выполнить сканирование сразу после запуска")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	// В режиме UI консольный вывод ломает экран
	if cfg.UI.Enabled {
		cfg.Logging.Console = false
	}
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *scanNow); err != nil {
		logger.Error("Аварийное завершение", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("Завершение работы")
}

var errUIClosed = errors.New("интерфейс закрыт пользователем")

func run(ctx context.Context, cfg *config.Config, scanNow bool) error {
	// Инициализируем хранилище
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}
	defer store.Close()

	// Клиент биржи и агрегатор аналитики
	source := exchange.NewBinanceSource(cfg.Binance, cfg.Exchange)
	analyzer := aggregator.NewAnalyzer(cfg.Analysis, cfg.Exchange, source, store)
	analyzer.SetScanLimits(cfg.Scanner.Workers, time.Duration(cfg.Scanner.SymbolDelayMs)*time.Millisecond)

	// Уведомления
	session := notification.NewSession(cfg.Notification.Telegram.ChatID)
	notifier := notification.NewManager(cfg.Notification.Signature,
		notification.NewTelegramNotifier(cfg.Notification.Telegram))

	scan, err := scanner.New(cfg.Scanner, analyzer, notifier, session)
	if err != nil {
		return fmt.Errorf("ошибка инициализации сканера: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, analyzer, store, cfg.Scanner.MinConfidence)
		scan.AddSink(srv)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	var termUI *ui.TermUI
	if cfg.UI.Enabled {
		termUI = ui.NewTermUI(cfg.UI, cfg.Logging.JSONFile)
		scan.AddSink(termUI)
	}

	if err := scan.Start(ctx); err != nil {
		return err
	}
	defer scan.Stop()

	if scanNow {
		g.Go(func() error {
			if _, err := scan.RunOnce(ctx); err != nil {
				logger.Warn("Первичное сканирование не выполнено", zap.Error(err))
			}
			return nil
		})
	}

	if termUI != nil {
		// Выход из UI завершает приложение
		g.Go(func() error {
			if err := termUI.Run(ctx); err != nil {
				return err
			}
			return errUIClosed
		})
	}

	logger.Info("mtfsignal запущен",
		zap.Int("symbols", len(cfg.Scanner.Symbols)),
		zap.Int("timeframes", len(analyzer.Timeframes())),
		zap.Bool("telegram", notifier.Enabled()),
		zap.Bool("server", cfg.Server.Enabled),
		zap.Bool("ui", cfg.UI.Enabled))

	<-ctx.Done()
	if err := g.Wait(); err != nil && !errors.Is(err, errUIClosed) {
		return err
	}
	return nil
}
