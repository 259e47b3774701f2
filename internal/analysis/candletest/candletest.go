// Package candletest строит синтетические ряды свечей для тестов анализаторов.
package candletest

import (
	"github.com/skalibog/mtfsignal/pkg/models"
)

const minuteMs = int64(60_000)

// wave треугольная волна с периодом 8: пик на фазе 4, впадина на фазе 0
var wave = [8]float64{0, 1, 2, 3, 4, 3, 2, 1}

// Flat n одинаковых свечей
func Flat(n int, price, volume float64) []*models.Candle {
	candles := make([]*models.Candle, n)
	for i := range candles {
		candles[i] = &models.Candle{
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    volume,
			Timestamp: int64(i) * minuteMs,
		}
	}
	return candles
}

// Zigzag ряд с пиками на индексах 8k+4 и впадинами на 8k.
// step - смещение за свечу: >0 дает растущие свинги, <0 - падающие.
// Тела свечей нулевые, соседние диапазоны перекрываются, поэтому
// ордер-блоков и разрывов в ряду нет. |step| должен быть меньше 1/3.
func Zigzag(n int, start, step float64) []*models.Candle {
	candles := make([]*models.Candle, n)
	for i := range candles {
		mid := start + float64(i)*step + wave[i%len(wave)]
		candles[i] = &models.Candle{
			Open:      mid,
			High:      mid + 0.6,
			Low:       mid - 0.6,
			Close:     mid,
			Volume:    100,
			Timestamp: int64(i) * minuteMs,
		}
	}
	return candles
}

// FromOHLC строит свечи из кортежей {open, high, low, close}
func FromOHLC(ohlc ...[4]float64) []*models.Candle {
	candles := make([]*models.Candle, len(ohlc))
	for i, v := range ohlc {
		candles[i] = &models.Candle{
			Open:      v[0],
			High:      v[1],
			Low:       v[2],
			Close:     v[3],
			Volume:    100,
			Timestamp: int64(i) * minuteMs,
		}
	}
	return candles
}

// WithVolumes проставляет объемы по порядку
func WithVolumes(candles []*models.Candle, volumes ...float64) []*models.Candle {
	for i := range candles {
		if i < len(volumes) {
			candles[i].Volume = volumes[i]
		}
	}
	return candles
}
