package exchange

import (
	"context"
	"errors"

	"github.com/skalibog/mtfsignal/pkg/models"
)

// ErrNoCandles биржа ответила, но свечей нет (пустой ответ или неизвестный символ)
var ErrNoCandles = errors.New("нет свечей")

// Status результат получения свечей для одного таймфрейма
type Status int

const (
	StatusAvailable Status = iota
	StatusNoData
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusNoData:
		return "no_data"
	default:
		return "transport_error"
	}
}

// FetchResult свечи либо причина их отсутствия
type FetchResult struct {
	Candles []*models.Candle
	Err     error
}

// Status различает "нет данных" и ошибку транспорта
func (r FetchResult) Status() Status {
	switch {
	case r.Err != nil && !errors.Is(r.Err, ErrNoCandles):
		return StatusTransportError
	case len(r.Candles) == 0:
		return StatusNoData
	default:
		return StatusAvailable
	}
}

// CandleSource источник свечей, упорядоченных от старых к новым
type CandleSource interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) FetchResult
}
