package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

func testExchangeConfig(retries int) config.ExchangeConfig {
	return config.ExchangeConfig{
		CandleLimit:         300,
		FetchTimeoutSeconds: 1,
		MaxRetries:          retries,
		RetryMinMs:          1,
		RetryMaxMs:          2,
	}
}

func sampleKlines() []*futures.Kline {
	return []*futures.Kline{
		{OpenTime: 1000, Open: "100.5", High: "101", Low: "99.5", Close: "100.8", Volume: "1234.5"},
		{OpenTime: 2000, Open: "100.8", High: "102", Low: "100", Close: "101.9", Volume: "987"},
	}
}

func TestFetchResultStatus(t *testing.T) {
	tests := []struct {
		name     string
		result   FetchResult
		expected Status
	}{
		{"candles", FetchResult{Candles: []*models.Candle{{Close: 1}}}, StatusAvailable},
		{"empty", FetchResult{}, StatusNoData},
		{"no candles error", FetchResult{Err: ErrNoCandles}, StatusNoData},
		{"wrapped no candles", FetchResult{Err: errors.Join(errors.New("ctx"), ErrNoCandles)}, StatusNoData},
		{"transport", FetchResult{Err: errors.New("connection reset")}, StatusTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Status(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestConvertKlines(t *testing.T) {
	candles, err := convertKlines("BTCUSDT", "1h", sampleKlines())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(candles))
	}

	c := candles[0]
	if c.Symbol != "BTCUSDT" || c.Interval != "1h" || c.Timestamp != 1000 {
		t.Errorf("unexpected metadata: %+v", c)
	}
	if c.Open != 100.5 || c.High != 101 || c.Low != 99.5 || c.Close != 100.8 || c.Volume != 1234.5 {
		t.Errorf("unexpected prices: %+v", c)
	}
}

func TestConvertKlinesInvalidNumber(t *testing.T) {
	klines := sampleKlines()
	klines[1].High = "abc"

	if _, err := convertKlines("BTCUSDT", "1h", klines); err == nil {
		t.Error("Expected parse error")
	}
}

func TestFetchCandlesRetriesTransportErrors(t *testing.T) {
	calls := 0
	source := newBinanceSource(func(ctx context.Context, symbol, interval string, limit int) ([]*futures.Kline, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("timeout")
		}
		return sampleKlines(), nil
	}, testExchangeConfig(2))

	result := source.FetchCandles(context.Background(), "BTCUSDT", "1h", 300)

	if result.Status() != StatusAvailable {
		t.Fatalf("Expected available, got %s (%v)", result.Status(), result.Err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestFetchCandlesGivesUp(t *testing.T) {
	calls := 0
	source := newBinanceSource(func(ctx context.Context, symbol, interval string, limit int) ([]*futures.Kline, error) {
		calls++
		return nil, errors.New("connection refused")
	}, testExchangeConfig(1))

	result := source.FetchCandles(context.Background(), "BTCUSDT", "1h", 300)

	if result.Status() != StatusTransportError {
		t.Errorf("Expected transport error, got %s", result.Status())
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestFetchCandlesInvalidSymbolIsNoData(t *testing.T) {
	calls := 0
	source := newBinanceSource(func(ctx context.Context, symbol, interval string, limit int) ([]*futures.Kline, error) {
		calls++
		return nil, &common.APIError{Code: codeInvalidSymbol, Message: "Invalid symbol."}
	}, testExchangeConfig(3))

	result := source.FetchCandles(context.Background(), "FOOUSDT", "1h", 300)

	if result.Status() != StatusNoData {
		t.Errorf("Expected no data, got %s", result.Status())
	}
	if !errors.Is(result.Err, ErrNoCandles) {
		t.Errorf("Expected ErrNoCandles, got %v", result.Err)
	}
	if calls != 1 {
		t.Errorf("API errors must not be retried, got %d calls", calls)
	}
}

func TestFetchCandlesEmptyResponse(t *testing.T) {
	source := newBinanceSource(func(ctx context.Context, symbol, interval string, limit int) ([]*futures.Kline, error) {
		return []*futures.Kline{}, nil
	}, testExchangeConfig(0))

	result := source.FetchCandles(context.Background(), "BTCUSDT", "1d", 300)

	if result.Status() != StatusNoData {
		t.Errorf("Expected no data, got %s", result.Status())
	}
}

func TestFetchCandlesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := newBinanceSource(func(ctx context.Context, symbol, interval string, limit int) ([]*futures.Kline, error) {
		cancel()
		return nil, ctx.Err()
	}, config.ExchangeConfig{MaxRetries: 5, RetryMinMs: 1000, RetryMaxMs: 1000})

	start := time.Now()
	result := source.FetchCandles(ctx, "BTCUSDT", "1h", 300)

	if result.Status() != StatusTransportError {
		t.Errorf("Expected transport error, got %s", result.Status())
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", result.Err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancelled fetch must not wait for backoff")
	}
}
