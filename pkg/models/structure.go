package models

// Trend направление рыночной структуры
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Sign возвращает +1 для бычьего тренда, -1 для медвежьего и 0 для нейтрального
func (t Trend) Sign() float64 {
	switch t {
	case TrendBullish:
		return 1
	case TrendBearish:
		return -1
	default:
		return 0
	}
}

// SwingKind тип точки разворота
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// SwingPoint локальный экстремум ряда
type SwingPoint struct {
	Index int       `json:"index"`
	Price float64   `json:"price"`
	Kind  SwingKind `json:"kind"`
}

// MarketStructure результат анализа структуры рынка
type MarketStructure struct {
	SwingHighs []SwingPoint `json:"swing_highs"`
	SwingLows  []SwingPoint `json:"swing_lows"`
	Trend      Trend        `json:"trend"`
}

// ZoneType направленность ордер-блока или разрыва
type ZoneType string

const (
	ZoneBullish ZoneType = "bullish"
	ZoneBearish ZoneType = "bearish"
)

// OrderBlock зона предшествующего позиционирования
type OrderBlock struct {
	Type     ZoneType `json:"type"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Strength float64  `json:"strength"`
}

// FairValueGap неторгованный ценовой интервал
type FairValueGap struct {
	Type ZoneType `json:"type"`
	High float64  `json:"high"`
	Low  float64  `json:"low"`
}

// LevelType тип уровня ликвидности
type LevelType string

const (
	LevelSupport    LevelType = "support"
	LevelResistance LevelType = "resistance"
)

// LiquidityLevel уровень поддержки/сопротивления по свингам
type LiquidityLevel struct {
	Type  LevelType `json:"type"`
	Price float64   `json:"price"`
}

// TimeframeAnalysis результат анализа одного таймфрейма
type TimeframeAnalysis struct {
	Price           float64          `json:"price"`
	Trend           Trend            `json:"trend"`
	Structure       MarketStructure  `json:"structure"`
	OrderBlocks     []OrderBlock     `json:"order_blocks"`
	FairValueGaps   []FairValueGap   `json:"fair_value_gaps"`
	LiquidityLevels []LiquidityLevel `json:"liquidity_levels"`
	ATR             float64          `json:"atr"`
	VolumeDelta     float64          `json:"volume_delta"`
}
