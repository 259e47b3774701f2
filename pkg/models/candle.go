package models

import (
	"time"
)

// Candle представляет свечу
type Candle struct {
	Symbol    string  `json:"symbol,omitempty"`
	Interval  string  `json:"interval,omitempty"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"` // время открытия, мс
}

// Time возвращает время открытия свечи
func (c *Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Body возвращает тело свечи со знаком (close - open)
func (c *Candle) Body() float64 {
	return c.Close - c.Open
}

// IsBullish сообщает, закрылась ли свеча выше открытия
func (c *Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish сообщает, закрылась ли свеча ниже открытия
func (c *Candle) IsBearish() bool {
	return c.Close < c.Open
}

// Highs извлекает ряд максимумов
func Highs(candles []*Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows извлекает ряд минимумов
func Lows(candles []*Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Closes извлекает ряд цен закрытия
func Closes(candles []*Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes извлекает ряд объемов
func Volumes(candles []*Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
