package swing

import (
	"testing"

	"github.com/skalibog/mtfsignal/pkg/models"
)

func TestIsSwingHigh(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		index    int
		lookback int
		expected bool
	}{
		{"clean peak", []float64{1, 2, 3, 9, 3, 2, 1}, 3, 3, true},
		{"tie on the left", []float64{1, 2, 9, 9, 3, 2, 1}, 3, 3, false},
		{"tie on the right", []float64{1, 2, 3, 9, 9, 2, 1}, 3, 3, false},
		{"higher neighbour far right", []float64{1, 2, 3, 9, 3, 2, 10}, 3, 3, false},
		{"window out of range", []float64{1, 9, 3, 2, 1}, 1, 3, false},
		{"smaller lookback", []float64{5, 2, 9, 3, 1}, 2, 2, true},
		{"zero lookback", []float64{1, 9, 1}, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSwingHigh(tt.values, tt.index, tt.lookback); got != tt.expected {
				t.Errorf("IsSwingHigh(%v, %d, %d) = %v, expected %v", tt.values, tt.index, tt.lookback, got, tt.expected)
			}
		})
	}
}

func TestIsSwingLow(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		index    int
		expected bool
	}{
		{"clean trough", []float64{9, 8, 7, 1, 7, 8, 9}, 3, true},
		{"tie", []float64{9, 8, 1, 1, 7, 8, 9}, 3, false},
		{"lower neighbour", []float64{0, 8, 7, 1, 7, 8, 9}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSwingLow(tt.values, tt.index, 3); got != tt.expected {
				t.Errorf("IsSwingLow(%v, %d) = %v, expected %v", tt.values, tt.index, got, tt.expected)
			}
		})
	}
}

// Крайние lookback индексов никогда не считаются свингами
func TestEdgesAreNeverSwings(t *testing.T) {
	// Монотонный ряд с экстремумами на краях
	rising := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	falling := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

	for _, lookback := range []int{1, 2, 3} {
		for i := 0; i < lookback; i++ {
			last := len(rising) - 1 - i
			if IsSwingHigh(rising, last, lookback) || IsSwingHigh(falling, i, lookback) {
				t.Errorf("lookback=%d: край %d/%d отмечен как swing high", lookback, i, last)
			}
			if IsSwingLow(rising, i, lookback) || IsSwingLow(falling, last, lookback) {
				t.Errorf("lookback=%d: край %d/%d отмечен как swing low", lookback, i, last)
			}
		}
	}
}

func TestFind(t *testing.T) {
	highs := []float64{1, 2, 3, 9, 3, 2, 1, 2, 3}
	lows := []float64{5, 4, 3, 2, 3, 4, 0.5, 4, 5}
	candles := make([]*models.Candle, len(highs))
	for i := range highs {
		candles[i] = &models.Candle{High: highs[i], Low: lows[i]}
	}

	h, l := Find(candles, 0, len(candles)-1, 2)

	if len(h) != 1 || h[0].Index != 3 || h[0].Price != 9 || h[0].Kind != models.SwingHigh {
		t.Errorf("неожиданные swing highs: %+v", h)
	}
	if len(l) != 2 {
		t.Fatalf("ожидалось 2 swing lows, получено %+v", l)
	}
	if l[0].Index != 3 || l[1].Index != 6 || l[1].Price != 0.5 || l[1].Kind != models.SwingLow {
		t.Errorf("неожиданные swing lows: %+v", l)
	}
}
