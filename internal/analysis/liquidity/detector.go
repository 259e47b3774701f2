package liquidity

import (
	"github.com/skalibog/mtfsignal/internal/analysis/swing"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// edgeSkip сколько свечей с каждого края ряда не рассматривается
const edgeSkip = 5

// Detector строит уровни ликвидности по свингам:
// максимумы - сопротивление, минимумы - поддержка
type Detector struct {
	lookback  int
	maxLevels int
}

// NewDetector создает детектор уровней ликвидности
func NewDetector(lookback, maxLevels int) *Detector {
	if lookback <= 0 {
		lookback = 2
	}
	if maxLevels <= 0 {
		maxLevels = 6
	}
	return &Detector{
		lookback:  lookback,
		maxLevels: maxLevels,
	}
}

// Detect просматривает индексы [5, len-6]. На одном индексе
// сопротивление добавляется раньше поддержки.
func (d *Detector) Detect(candles []*models.Candle) []models.LiquidityLevel {
	levels := []models.LiquidityLevel{}

	highs := models.Highs(candles)
	lows := models.Lows(candles)

	for i := edgeSkip; i < len(candles)-edgeSkip; i++ {
		if swing.IsSwingHigh(highs, i, d.lookback) {
			levels = append(levels, models.LiquidityLevel{Type: models.LevelResistance, Price: highs[i]})
		}
		if swing.IsSwingLow(lows, i, d.lookback) {
			levels = append(levels, models.LiquidityLevel{Type: models.LevelSupport, Price: lows[i]})
		}
	}

	if len(levels) > d.maxLevels {
		levels = levels[len(levels)-d.maxLevels:]
	}
	return levels
}
