// Package swing находит локальные экстремумы ценового ряда.
package swing

import (
	"github.com/skalibog/mtfsignal/pkg/models"
)

// IsSwingHigh проверяет, что values[index] строго выше всех соседей
// в симметричном окне lookback. Если окно выходит за границы ряда,
// точка свингом не считается. Равенство в любом месте окна - не свинг.
func IsSwingHigh(values []float64, index, lookback int) bool {
	if !windowInRange(len(values), index, lookback) {
		return false
	}
	for o := 1; o <= lookback; o++ {
		if values[index] <= values[index-o] || values[index] <= values[index+o] {
			return false
		}
	}
	return true
}

// IsSwingLow симметричен IsSwingHigh
func IsSwingLow(values []float64, index, lookback int) bool {
	if !windowInRange(len(values), index, lookback) {
		return false
	}
	for o := 1; o <= lookback; o++ {
		if values[index] >= values[index-o] || values[index] >= values[index+o] {
			return false
		}
	}
	return true
}

func windowInRange(length, index, lookback int) bool {
	return lookback > 0 && index-lookback >= 0 && index+lookback < length
}

// Find собирает свинги по максимумам и минимумам свечей на индексах [from, to]
func Find(candles []*models.Candle, from, to, lookback int) (highs, lows []models.SwingPoint) {
	highValues := models.Highs(candles)
	lowValues := models.Lows(candles)

	if from < 0 {
		from = 0
	}
	if to > len(candles)-1 {
		to = len(candles) - 1
	}

	for i := from; i <= to; i++ {
		if IsSwingHigh(highValues, i, lookback) {
			highs = append(highs, models.SwingPoint{Index: i, Price: highValues[i], Kind: models.SwingHigh})
		}
		if IsSwingLow(lowValues, i, lookback) {
			lows = append(lows, models.SwingPoint{Index: i, Price: lowValues[i], Kind: models.SwingLow})
		}
	}
	return highs, lows
}
