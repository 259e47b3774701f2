package orderblock

import (
	"math"

	"github.com/skalibog/mtfsignal/pkg/models"
)

const (
	// impulseRatio во сколько раз тело следующей свечи должно превышать текущее
	impulseRatio = 1.5
	// blockStrength фиксированная сила блока
	blockStrength = 0.8
)

// Detector находит ордер-блоки: свечу, за которой идет
// однонаправленная свеча с телом больше в 1.5 раза
type Detector struct {
	maxBlocks int
}

// NewDetector создает детектор, хранящий не более maxBlocks последних блоков
func NewDetector(maxBlocks int) *Detector {
	if maxBlocks <= 0 {
		maxBlocks = 10
	}
	return &Detector{
		maxBlocks: maxBlocks,
	}
}

// Detect сканирует пары (i, i+1) начиная с i = 1
func (d *Detector) Detect(candles []*models.Candle) []models.OrderBlock {
	blocks := []models.OrderBlock{}

	for i := 1; i < len(candles)-1; i++ {
		current := candles[i]
		next := candles[i+1]

		if math.Abs(next.Body()) <= math.Abs(current.Body())*impulseRatio {
			continue
		}

		switch {
		case current.IsBearish() && next.IsBearish():
			blocks = append(blocks, models.OrderBlock{
				Type:     models.ZoneBearish,
				High:     current.High,
				Low:      current.Low,
				Strength: blockStrength,
			})
		case current.IsBullish() && next.IsBullish():
			blocks = append(blocks, models.OrderBlock{
				Type:     models.ZoneBullish,
				High:     current.High,
				Low:      current.Low,
				Strength: blockStrength,
			})
		}
	}

	if len(blocks) > d.maxBlocks {
		blocks = blocks[len(blocks)-d.maxBlocks:]
	}
	return blocks
}
