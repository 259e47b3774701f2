package volatility

import (
	"github.com/markcheno/go-talib"

	"github.com/skalibog/mtfsignal/pkg/models"
)

// DefaultPeriod стандартный период ATR
const DefaultPeriod = 14

// ATR рассчитывает Average True Range со сглаживанием Уайлдера (TA-Lib)
// и возвращает последнее значение. Меньше period+1 свечей - 0.
func ATR(candles []*models.Candle, period int) float64 {
	if period <= 0 {
		period = DefaultPeriod
	}
	if len(candles) < period+1 {
		return 0
	}

	atr := talib.Atr(models.Highs(candles), models.Lows(candles), models.Closes(candles), period)
	return atr[len(atr)-1]
}
