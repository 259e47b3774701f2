package structure

import (
	"github.com/skalibog/mtfsignal/internal/analysis/swing"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// Analyzer классифицирует тренд по последовательности свингов
type Analyzer struct {
	lookback int
}

// NewAnalyzer создает новый анализатор структуры
func NewAnalyzer(lookback int) *Analyzer {
	if lookback <= 0 {
		lookback = 3
	}
	return &Analyzer{
		lookback: lookback,
	}
}

// Analyze собирает свинги на индексах [lookback, len-lookback-1]
// и определяет тренд по двум последним максимумам и минимумам
func (a *Analyzer) Analyze(candles []*models.Candle) models.MarketStructure {
	structure := models.MarketStructure{
		SwingHighs: []models.SwingPoint{},
		SwingLows:  []models.SwingPoint{},
		Trend:      models.TrendNeutral,
	}

	highs, lows := swing.Find(candles, a.lookback, len(candles)-a.lookback-1, a.lookback)
	if highs != nil {
		structure.SwingHighs = highs
	}
	if lows != nil {
		structure.SwingLows = lows
	}

	structure.Trend = Classify(structure.SwingHighs, structure.SwingLows)
	return structure
}

// Classify: HH+HL - бычий, LH+LL - медвежий, иначе нейтральный.
// Меньше двух максимумов или минимумов - нейтральный.
func Classify(highs, lows []models.SwingPoint) models.Trend {
	if len(highs) < 2 || len(lows) < 2 {
		return models.TrendNeutral
	}

	h0, h1 := highs[len(highs)-2], highs[len(highs)-1]
	l0, l1 := lows[len(lows)-2], lows[len(lows)-1]

	switch {
	case h1.Price > h0.Price && l1.Price > l0.Price:
		return models.TrendBullish
	case h1.Price < h0.Price && l1.Price < l0.Price:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}
