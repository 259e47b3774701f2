package fvg

import (
	"math"

	"github.com/skalibog/mtfsignal/pkg/models"
)

// Detector находит разрывы справедливой стоимости (FVG):
// свечу, диапазон которой не пересекается с диапазонами соседей
type Detector struct {
	maxGaps int
}

// NewDetector создает детектор, хранящий не более maxGaps последних разрывов
func NewDetector(maxGaps int) *Detector {
	if maxGaps <= 0 {
		maxGaps = 8
	}
	return &Detector{
		maxGaps: maxGaps,
	}
}

// Detect проверяет каждую внутреннюю свечу i относительно i-1 и i+1
func (d *Detector) Detect(candles []*models.Candle) []models.FairValueGap {
	gaps := []models.FairValueGap{}

	for i := 1; i < len(candles)-1; i++ {
		prev := candles[i-1]
		curr := candles[i]
		next := candles[i+1]

		// Бычий: минимум свечи выше максимумов обеих соседних
		if curr.Low > math.Max(prev.High, next.High) {
			gaps = append(gaps, models.FairValueGap{
				Type: models.ZoneBullish,
				High: math.Min(prev.Low, next.Low),
				Low:  curr.High,
			})
		}

		// Медвежий: максимум свечи ниже минимумов обеих соседних
		if curr.High < math.Min(prev.Low, next.Low) {
			gaps = append(gaps, models.FairValueGap{
				Type: models.ZoneBearish,
				High: curr.Low,
				Low:  math.Max(prev.High, next.High),
			})
		}
	}

	if len(gaps) > d.maxGaps {
		gaps = gaps[len(gaps)-d.maxGaps:]
	}
	return gaps
}
