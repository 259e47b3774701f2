package models

import (
	"time"
)

// Direction направление сигнала
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// TimeframeSummary краткая сводка по таймфрейму для отображения
type TimeframeSummary struct {
	Label       string  `json:"label"`
	Trend       Trend   `json:"trend"`
	Score       float64 `json:"score"`
	ATR         float64 `json:"atr"`
	VolumeDelta float64 `json:"volume_delta"`
}

// Signal итоговый торговый сигнал по символу
type Signal struct {
	ID                 string             `json:"id"`
	Symbol             string             `json:"symbol"`
	Timestamp          time.Time          `json:"timestamp"`
	Price              float64            `json:"price"`
	Direction          Direction          `json:"direction"`
	Bias               float64            `json:"bias"`
	Confidence         int                `json:"confidence"`
	Entry              float64            `json:"entry"`
	SL                 float64            `json:"sl"`
	TP                 float64            `json:"tp"`
	RR                 float64            `json:"rr"`
	ReferenceTimeframe string             `json:"reference_timeframe"`
	Timeframes         []TimeframeSummary `json:"timeframes,omitempty"`
}
