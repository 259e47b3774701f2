package fvg

import (
	"testing"

	"github.com/skalibog/mtfsignal/internal/analysis/candletest"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// TestDetectBullishGap: low[1] выше high[0] и high[2]
func TestDetectBullishGap(t *testing.T) {
	candles := candletest.FromOHLC(
		[4]float64{95, 100, 94, 98},
		[4]float64{103, 108, 102, 106},
		[4]float64{99, 101, 96, 97},
	)

	gaps := NewDetector(8).Detect(candles)

	if len(gaps) != 1 {
		t.Fatalf("Expected 1 gap, got %d", len(gaps))
	}
	gap := gaps[0]
	if gap.Type != models.ZoneBullish {
		t.Errorf("Expected bullish, got %s", gap.Type)
	}
	if gap.Low != 108 {
		t.Errorf("Expected Low = high[1] = 108, got %f", gap.Low)
	}
	if gap.High != 94 {
		t.Errorf("Expected High = min(low[0], low[2]) = 94, got %f", gap.High)
	}
}

// TestDetectBearishGap: high[1] ниже low[0] и low[2]
func TestDetectBearishGap(t *testing.T) {
	candles := candletest.FromOHLC(
		[4]float64{105, 106, 100, 102},
		[4]float64{96, 97, 92, 93},
		[4]float64{99, 104, 98, 103},
	)

	gaps := NewDetector(8).Detect(candles)

	if len(gaps) != 1 {
		t.Fatalf("Expected 1 gap, got %d", len(gaps))
	}
	gap := gaps[0]
	if gap.Type != models.ZoneBearish {
		t.Errorf("Expected bearish, got %s", gap.Type)
	}
	if gap.High != 92 {
		t.Errorf("Expected High = low[1] = 92, got %f", gap.High)
	}
	if gap.Low != 106 {
		t.Errorf("Expected Low = max(high[0], high[2]) = 106, got %f", gap.Low)
	}
}

func TestNoGapDetection(t *testing.T) {
	tests := []struct {
		name    string
		candles []*models.Candle
	}{
		{"overlapping", candletest.FromOHLC(
			[4]float64{95, 100, 94, 98},
			[4]float64{98, 102, 97, 100},
			[4]float64{100, 104, 99, 102},
		)},
		{"touching is not a gap", candletest.FromOHLC(
			[4]float64{95, 100, 94, 98},
			[4]float64{101, 105, 100, 104},
			[4]float64{99, 100, 96, 97},
		)},
		{"flat", candletest.Flat(30, 100, 10)},
		{"two candles", candletest.Flat(2, 100, 10)},
		{"empty", nil},
	}

	detector := NewDetector(8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if gaps := detector.Detect(tt.candles); len(gaps) != 0 {
				t.Errorf("Expected 0 gaps, got %+v", gaps)
			}
		})
	}
}

func TestDetectKeepsMostRecent(t *testing.T) {
	// Чередуем низкие и высокие свечи: каждая высокая - бычий разрыв
	var ohlc [][4]float64
	for i := 0; i < 25; i++ {
		base := float64(i)
		ohlc = append(ohlc, [4]float64{base, base + 1, base, base + 1})
		ohlc = append(ohlc, [4]float64{base + 5, base + 6, base + 5, base + 6})
	}
	ohlc = append(ohlc, [4]float64{30, 31, 30, 31})
	candles := candletest.FromOHLC(ohlc...)

	all := NewDetector(100).Detect(candles)
	recent := NewDetector(8).Detect(candles)

	if len(all) <= 8 {
		t.Fatalf("тест требует больше 8 разрывов, найдено %d", len(all))
	}
	if len(recent) != 8 {
		t.Fatalf("ожидалось 8 разрывов, получено %d", len(recent))
	}
	for i := range recent {
		if recent[i] != all[len(all)-8+i] {
			t.Errorf("разрыв #%d не совпадает с хвостом полного списка", i)
		}
	}
}

func BenchmarkDetect(b *testing.B) {
	candles := candletest.Zigzag(300, 100, 0.1)
	detector := NewDetector(8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		detector.Detect(candles)
	}
}
