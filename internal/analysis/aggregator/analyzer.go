package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skalibog/mtfsignal/internal/analysis/levels"
	"github.com/skalibog/mtfsignal/internal/analysis/timeframe"
	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/internal/exchange"
	"github.com/skalibog/mtfsignal/internal/storage"
	"github.com/skalibog/mtfsignal/pkg/logger"
	"github.com/skalibog/mtfsignal/pkg/models"
)

var (
	// ErrNoData ни один таймфрейм не дал свечей, оценка невозможна
	ErrNoData = errors.New("нет данных ни по одному таймфрейму")
	// ErrAnalysisFault внутренний сбой при анализе символа
	ErrAnalysisFault = errors.New("сбой анализа")
)

const defaultFetchTimeout = 15 * time.Second

// Analyzer объединяет анализ всех таймфреймов в сигнал
type Analyzer struct {
	config       config.AnalysisConfig
	candleLimit  int
	fetchTimeout time.Duration
	source       exchange.CandleSource
	storage      storage.Storage
	timeframe    *timeframe.Analyzer
	workers      int
	spacing      time.Duration
	now          func() time.Time
}

// NewAnalyzer создает новый анализатор
func NewAnalyzer(cfg config.AnalysisConfig, exCfg config.ExchangeConfig, source exchange.CandleSource, store storage.Storage) *Analyzer {
	if cfg.BiasThreshold <= 0 {
		cfg.BiasThreshold = config.DefaultAnalysis().BiasThreshold
	}
	if store == nil {
		store = storage.NopStorage{}
	}

	fetchTimeout := time.Duration(exCfg.FetchTimeoutSeconds) * time.Second
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &Analyzer{
		config:       cfg,
		candleLimit:  exCfg.CandleLimit,
		fetchTimeout: fetchTimeout,
		source:       source,
		storage:      store,
		timeframe:    timeframe.NewAnalyzer(cfg),
		workers:      1,
		now:          time.Now,
	}
}

// SetScanLimits задает число параллельных символов и паузу между их запуском
func (a *Analyzer) SetScanLimits(workers int, spacing time.Duration) {
	if workers <= 0 {
		workers = 1
	}
	a.workers = workers
	a.spacing = spacing
}

// Timeframes возвращает таблицу таймфреймов
func (a *Analyzer) Timeframes() []config.TimeframeConfig {
	return a.config.Timeframes
}

// GenerateSignals анализирует символы с ограничением параллельности.
// Ошибки отдельных символов логируются и не прерывают сканирование.
// Сигналы возвращаются в порядке символов.
func (a *Analyzer) GenerateSignals(ctx context.Context, symbols []string) ([]*models.Signal, error) {
	signals := make([]*models.Signal, len(symbols))

	g := new(errgroup.Group)
	g.SetLimit(a.workers)

dispatch:
	for i, symbol := range symbols {
		if i > 0 && a.spacing > 0 {
			select {
			case <-time.After(a.spacing):
			case <-ctx.Done():
				break dispatch
			}
		}
		if ctx.Err() != nil {
			break
		}

		i, symbol := i, symbol
		g.Go(func() error {
			signal, err := a.AnalyzeSymbol(ctx, symbol)
			if err != nil {
				logger.Warn("AGGREGATOR: Сигнал не сформирован", zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			signals[i] = signal
			return nil
		})
	}

	_ = g.Wait()

	result := make([]*models.Signal, 0, len(symbols))
	for _, s := range signals {
		if s != nil {
			result = append(result, s)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("сканирование прервано: %w", err)
	}
	return result, nil
}

// AnalyzeSymbol получает и анализирует все таймфреймы символа параллельно
// и сводит их в сигнал. Недоступный таймфрейм пропускается.
func (a *Analyzer) AnalyzeSymbol(ctx context.Context, symbol string) (signal *models.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			signal = nil
			err = a.fault(symbol, r)
		}
	}()

	results, err := a.collect(ctx, symbol)
	if err != nil {
		return nil, err
	}

	signal, err = a.buildSignal(symbol, results)
	if err != nil {
		return nil, err
	}

	logger.Debug("AGGREGATOR: Сигнал сформирован",
		zap.String("symbol", symbol),
		zap.String("direction", string(signal.Direction)),
		zap.Int("confidence", signal.Confidence),
		zap.Float64("bias", signal.Bias))

	if err := a.storage.SaveSignal(ctx, signal); err != nil {
		logger.Warn("AGGREGATOR: Не удалось сохранить сигнал", zap.String("symbol", symbol), zap.Error(err))
	}

	return signal, nil
}

// collect запускает цепочки получение+анализ по всем таймфреймам.
// Результаты выровнены по таблице таймфреймов.
func (a *Analyzer) collect(ctx context.Context, symbol string) ([]TimeframeResult, error) {
	results := make([]TimeframeResult, len(a.config.Timeframes))

	g, gctx := errgroup.WithContext(ctx)
	for i, tf := range a.config.Timeframes {
		i, tf := i, tf
		results[i].Timeframe = tf

		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = a.fault(symbol, r)
				}
			}()
			results[i].Analysis = a.analyzeTimeframe(gctx, symbol, tf)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("анализ %s прерван: %w", symbol, err)
	}

	return results, nil
}

func (a *Analyzer) analyzeTimeframe(ctx context.Context, symbol string, tf config.TimeframeConfig) *models.TimeframeAnalysis {
	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	result := a.source.FetchCandles(fetchCtx, symbol, tf.Interval, a.candleLimit)

	switch result.Status() {
	case exchange.StatusNoData:
		logger.Debug("AGGREGATOR: Нет свечей",
			zap.String("symbol", symbol),
			zap.String("timeframe", tf.Label))
		return nil
	case exchange.StatusTransportError:
		logger.Warn("AGGREGATOR: Таймфрейм недоступен",
			zap.String("symbol", symbol),
			zap.String("timeframe", tf.Label),
			zap.Error(result.Err))
		return nil
	}

	// Брошенные запросы не анализируются
	if ctx.Err() != nil {
		return nil
	}

	return a.timeframe.Analyze(result.Candles)
}

func (a *Analyzer) buildSignal(symbol string, results []TimeframeResult) (*models.Signal, error) {
	confidence, err := Confidence(results)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	bias := Bias(results)
	direction := DirectionFor(bias, a.config.BiasThreshold)

	table := make([]config.TimeframeConfig, len(results))
	analyses := make([]*models.TimeframeAnalysis, len(results))
	summaries := make([]models.TimeframeSummary, 0, len(results))
	price := 0.0
	pricePicked := false

	for i, r := range results {
		table[i] = r.Timeframe
		analyses[i] = r.Analysis
		if r.Analysis == nil {
			continue
		}
		if !pricePicked {
			price = r.Analysis.Price
			pricePicked = true
		}
		summaries = append(summaries, models.TimeframeSummary{
			Label:       r.Timeframe.Label,
			Trend:       r.Analysis.Trend,
			Score:       TimeframeScore(r.Analysis),
			ATR:         r.Analysis.ATR,
			VolumeDelta: r.Analysis.VolumeDelta,
		})
	}

	ref := levels.Reference(a.config.ReferenceLabels, table, analyses)
	lv := levels.Calculate(direction, price, analyses[ref].ATR)

	return &models.Signal{
		ID:                 uuid.NewString(),
		Symbol:             symbol,
		Timestamp:          a.now(),
		Price:              price,
		Direction:          direction,
		Bias:               bias,
		Confidence:         confidence,
		Entry:              lv.Entry,
		SL:                 lv.SL,
		TP:                 lv.TP,
		RR:                 lv.RR,
		ReferenceTimeframe: table[ref].Label,
		Timeframes:         summaries,
	}, nil
}

func (a *Analyzer) fault(symbol string, r interface{}) error {
	logger.Error("AGGREGATOR: Сбой анализа символа",
		zap.String("symbol", symbol),
		zap.Any("panic", r),
		zap.Stack("stack"))
	return fmt.Errorf("%w: %s: %v", ErrAnalysisFault, symbol, r)
}
