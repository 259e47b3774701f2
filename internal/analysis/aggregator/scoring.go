package aggregator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// Баллы уверенности одного таймфрейма
const (
	scoreTrend         = 20
	scoreVolume        = 25
	volumeDeltaBoost   = 1.2
	scorePerOrderBlock = 3
	maxOrderBlockScore = 20
	scorePerGap        = 2
	maxGapScore        = 15
	scoreScale         = 100
)

// TimeframeResult анализ таймфрейма вместе со строкой таблицы.
// Analysis == nil, если таймфрейм недоступен.
type TimeframeResult struct {
	Timeframe config.TimeframeConfig
	Analysis  *models.TimeframeAnalysis
}

// Bias сумма weight*sign(trend) по присутствующим таймфреймам
func Bias(results []TimeframeResult) float64 {
	terms := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Analysis == nil {
			continue
		}
		terms = append(terms, r.Timeframe.Weight*r.Analysis.Trend.Sign())
	}
	return floats.Sum(terms)
}

// DirectionFor: выше +threshold - LONG, ниже -threshold - SHORT.
// Границы включительно дают NEUTRAL.
func DirectionFor(bias, threshold float64) models.Direction {
	switch {
	case bias > threshold:
		return models.DirectionLong
	case bias < -threshold:
		return models.DirectionShort
	default:
		return models.DirectionNeutral
	}
}

// TimeframeScore баллы таймфрейма (максимум 80 из 100 возможных)
func TimeframeScore(analysis *models.TimeframeAnalysis) float64 {
	score := 0.0
	if analysis.Trend != models.TrendNeutral {
		score += scoreTrend
	}
	if analysis.VolumeDelta > volumeDeltaBoost {
		score += scoreVolume
	}
	score += math.Min(maxOrderBlockScore, float64(scorePerOrderBlock*len(analysis.OrderBlocks)))
	score += math.Min(maxGapScore, float64(scorePerGap*len(analysis.FairValueGaps)))
	return score
}

// Confidence взвешенная доля набранных баллов в процентах, 0..100.
// Без присутствующих таймфреймов возвращает ErrNoData.
func Confidence(results []TimeframeResult) (int, error) {
	var scores, scales []float64
	for _, r := range results {
		if r.Analysis == nil {
			continue
		}
		scores = append(scores, TimeframeScore(r.Analysis)*r.Timeframe.Weight)
		scales = append(scales, scoreScale*r.Timeframe.Weight)
	}

	maxScore := floats.Sum(scales)
	if maxScore <= 0 {
		return 0, ErrNoData
	}

	confidence := 100 * floats.Sum(scores) / maxScore
	confidence = math.Max(0, math.Min(100, confidence))
	return int(math.Round(confidence)), nil
}
