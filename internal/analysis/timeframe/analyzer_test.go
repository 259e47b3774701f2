package timeframe

import (
	"testing"

	"github.com/skalibog/mtfsignal/internal/analysis/candletest"
	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(config.DefaultAnalysis())
}

func TestAnalyzeEmpty(t *testing.T) {
	if result := newTestAnalyzer().Analyze(nil); result != nil {
		t.Errorf("Expected nil for empty series, got %+v", result)
	}
	if result := newTestAnalyzer().Analyze([]*models.Candle{}); result != nil {
		t.Errorf("Expected nil for empty series, got %+v", result)
	}
}

func TestAnalyzeFlatSeries(t *testing.T) {
	candles := candletest.Flat(30, 100, 10)

	result := newTestAnalyzer().Analyze(candles)

	if result == nil {
		t.Fatal("Expected analysis, got nil")
	}
	if result.Price != 100 {
		t.Errorf("Expected price 100, got %f", result.Price)
	}
	if result.ATR != 0 {
		t.Errorf("Expected ATR 0, got %f", result.ATR)
	}
	if result.Trend != models.TrendNeutral {
		t.Errorf("Expected neutral trend, got %s", result.Trend)
	}
	if len(result.OrderBlocks) != 0 || len(result.FairValueGaps) != 0 || len(result.LiquidityLevels) != 0 {
		t.Errorf("Expected no zones, got %d OB, %d FVG, %d levels",
			len(result.OrderBlocks), len(result.FairValueGaps), len(result.LiquidityLevels))
	}
	if result.VolumeDelta != 1 {
		t.Errorf("Expected volume delta 1, got %f", result.VolumeDelta)
	}
}

func TestAnalyzeRisingSeries(t *testing.T) {
	candles := candletest.Zigzag(60, 100, 0.1)

	result := newTestAnalyzer().Analyze(candles)

	if result == nil {
		t.Fatal("Expected analysis, got nil")
	}
	if result.Trend != models.TrendBullish {
		t.Errorf("Expected bullish trend, got %s", result.Trend)
	}
	if result.Structure.Trend != result.Trend {
		t.Errorf("Trend %s differs from structure trend %s", result.Trend, result.Structure.Trend)
	}
	if result.Price != candles[len(candles)-1].Close {
		t.Errorf("Expected last close %f, got %f", candles[len(candles)-1].Close, result.Price)
	}
	if result.ATR <= 0 {
		t.Errorf("Expected positive ATR, got %f", result.ATR)
	}
	if len(result.OrderBlocks) != 0 || len(result.FairValueGaps) != 0 {
		t.Errorf("Expected no order blocks or gaps, got %d / %d", len(result.OrderBlocks), len(result.FairValueGaps))
	}
	if len(result.LiquidityLevels) != 6 {
		t.Errorf("Expected 6 liquidity levels, got %d", len(result.LiquidityLevels))
	}
}

func TestAnalyzeFallingSeries(t *testing.T) {
	result := newTestAnalyzer().Analyze(candletest.Zigzag(60, 100, -0.1))

	if result.Trend != models.TrendBearish {
		t.Errorf("Expected bearish trend, got %s", result.Trend)
	}
}

func TestAnalyzeSingleCandle(t *testing.T) {
	candles := candletest.FromOHLC([4]float64{10, 12, 9, 11})

	result := newTestAnalyzer().Analyze(candles)

	if result == nil {
		t.Fatal("Expected analysis, got nil")
	}
	if result.Price != 11 || result.ATR != 0 || result.Trend != models.TrendNeutral {
		t.Errorf("unexpected result for single candle: %+v", result)
	}
}
