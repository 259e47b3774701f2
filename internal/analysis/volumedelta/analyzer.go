// internal/analysis/volumedelta/analyzer.go
package volumedelta

import (
	"gonum.org/v1/gonum/floats"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// Analyzer реализует анализатор дельты объемов
type Analyzer struct {
	config config.VolumeDeltaConfig
}

// NewAnalyzer создает новый анализатор дельты объемов
func NewAnalyzer(cfg config.VolumeDeltaConfig) *Analyzer {
	if cfg.Recent <= 0 {
		cfg.Recent = 5
	}
	if cfg.Older <= 0 {
		cfg.Older = 15
	}
	return &Analyzer{
		config: cfg,
	}
}

// Analyze возвращает отношение среднего объема последних Recent свечей
// к среднему объему Older свечей перед ними. Делители фиксированы,
// даже если свечей меньше. При нулевом старом объеме возвращается 1.
func (a *Analyzer) Analyze(candles []*models.Candle) float64 {
	volumes := models.Volumes(candles)
	n := len(volumes)

	recentStart := max(0, n-a.config.Recent)
	olderStart := max(0, n-a.config.Recent-a.config.Older)

	recentAvg := floats.Sum(volumes[recentStart:]) / float64(a.config.Recent)
	olderAvg := floats.Sum(volumes[olderStart:recentStart]) / float64(a.config.Older)

	if olderAvg > 0 {
		return recentAvg / olderAvg
	}
	return 1
}
