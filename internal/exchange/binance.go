package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/logger"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// codeInvalidSymbol код ошибки Binance для неизвестного символа
const codeInvalidSymbol = -1121

type klinesFetcher func(ctx context.Context, symbol, interval string, limit int) ([]*futures.Kline, error)

// BinanceSource получает свечи USDT-M фьючерсов Binance
type BinanceSource struct {
	fetch      klinesFetcher
	maxRetries int
	retryMin   time.Duration
	retryMax   time.Duration
}

// NewBinanceSource создает источник свечей Binance
func NewBinanceSource(cfg config.BinanceConfig, exCfg config.ExchangeConfig) *BinanceSource {
	futures.UseTestnet = cfg.Testnet
	client := futures.NewClient(cfg.APIKey, cfg.APISecret)

	return newBinanceSource(func(ctx context.Context, symbol, interval string, limit int) ([]*futures.Kline, error) {
		return client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			Limit(limit).
			Do(ctx)
	}, exCfg)
}

func newBinanceSource(fetch klinesFetcher, exCfg config.ExchangeConfig) *BinanceSource {
	retries := exCfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &BinanceSource{
		fetch:      fetch,
		maxRetries: retries,
		retryMin:   time.Duration(exCfg.RetryMinMs) * time.Millisecond,
		retryMax:   time.Duration(exCfg.RetryMaxMs) * time.Millisecond,
	}
}

// FetchCandles запрашивает свечи с повторами при ошибках транспорта.
// Ошибки API (кроме неизвестного символа) не повторяются.
func (s *BinanceSource) FetchCandles(ctx context.Context, symbol, interval string, limit int) FetchResult {
	b := &backoff.Backoff{
		Min:    s.retryMin,
		Max:    s.retryMax,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(b.Duration()):
			case <-ctx.Done():
				return FetchResult{Err: fmt.Errorf("получение свечей %s %s прервано: %w", symbol, interval, ctx.Err())}
			}
		}

		klines, err := s.fetch(ctx, symbol, interval, limit)
		if err == nil {
			candles, err := convertKlines(symbol, interval, klines)
			if err != nil {
				return FetchResult{Err: err}
			}
			if len(candles) == 0 {
				return FetchResult{Err: fmt.Errorf("%w: %s %s", ErrNoCandles, symbol, interval)}
			}
			return FetchResult{Candles: candles}
		}

		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Code == codeInvalidSymbol {
				return FetchResult{Err: fmt.Errorf("%w: %s %s: %s", ErrNoCandles, symbol, interval, apiErr.Message)}
			}
			return FetchResult{Err: fmt.Errorf("ошибка API при получении свечей %s %s: %w", symbol, interval, err)}
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logger.Warn("EXCHANGE: Ошибка получения свечей",
			zap.String("symbol", symbol),
			zap.String("interval", interval),
			zap.Int("попытка", attempt+1),
			zap.Error(err))
	}

	return FetchResult{Err: fmt.Errorf("ошибка получения свечей %s %s: %w", symbol, interval, lastErr)}
}

// convertKlines переводит строковые поля ответа Binance в числа
func convertKlines(symbol, interval string, klines []*futures.Kline) ([]*models.Candle, error) {
	candles := make([]*models.Candle, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		values, err := parseFloats(k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return nil, fmt.Errorf("некорректная свеча %s %s (%d): %w", symbol, interval, k.OpenTime, err)
		}
		candles = append(candles, &models.Candle{
			Symbol:    symbol,
			Interval:  interval,
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
			Timestamp: k.OpenTime,
		})
	}
	return candles, nil
}

func parseFloats(raw ...string) ([]float64, error) {
	values := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
