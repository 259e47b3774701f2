// Package levels рассчитывает точку входа, стоп и цель по ATR.
package levels

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

const (
	// stopATR расстояние до стопа в ATR
	stopATR = 2
	// rewardRisk во сколько раз цель дальше стопа
	rewardRisk = 2
)

// Levels торговые уровни сигнала
type Levels struct {
	Entry float64
	SL    float64
	TP    float64
	RR    float64
}

// Calculate: вход по цене, стоп в 2 ATR, цель в 2 риска.
// NEUTRAL считается как LONG. При нулевом риске RR = 0.
func Calculate(direction models.Direction, price, atr float64) Levels {
	entry := price

	var sl, tp float64
	if direction == models.DirectionShort {
		sl = entry + stopATR*atr
		tp = entry - rewardRisk*(sl-entry)
	} else {
		sl = entry - stopATR*atr
		tp = entry + rewardRisk*(entry-sl)
	}

	return Levels{
		Entry: entry,
		SL:    sl,
		TP:    tp,
		RR:    RiskReward(entry, sl, tp),
	}
}

// RiskReward |tp-entry| / |entry-sl|, округленное до сотых
func RiskReward(entry, sl, tp float64) float64 {
	risk := math.Abs(entry - sl)
	if risk == 0 {
		return 0
	}
	rr := decimal.NewFromFloat(math.Abs(tp - entry)).
		Div(decimal.NewFromFloat(risk)).
		Round(2)
	return rr.InexactFloat64()
}

// Reference выбирает опорный таймфрейм для уровней: первый присутствующий
// из preferred, иначе первый присутствующий в таблице.
// analyses выровнены по таблице timeframes. Возвращает -1, если анализов нет.
func Reference(preferred []string, timeframes []config.TimeframeConfig, analyses []*models.TimeframeAnalysis) int {
	for _, label := range preferred {
		for i, tf := range timeframes {
			if tf.Label == label && i < len(analyses) && analyses[i] != nil {
				return i
			}
		}
	}
	for i := range timeframes {
		if i < len(analyses) && analyses[i] != nil {
			return i
		}
	}
	return -1
}
