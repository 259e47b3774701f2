// Package timeframe собирает результаты всех детекторов для одного ряда свечей.
package timeframe

import (
	"github.com/skalibog/mtfsignal/internal/analysis/fvg"
	"github.com/skalibog/mtfsignal/internal/analysis/liquidity"
	"github.com/skalibog/mtfsignal/internal/analysis/orderblock"
	"github.com/skalibog/mtfsignal/internal/analysis/structure"
	"github.com/skalibog/mtfsignal/internal/analysis/volatility"
	"github.com/skalibog/mtfsignal/internal/analysis/volumedelta"
	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// Analyzer анализирует один таймфрейм
type Analyzer struct {
	atrPeriod   int
	structure   *structure.Analyzer
	orderBlocks *orderblock.Detector
	gaps        *fvg.Detector
	liquidity   *liquidity.Detector
	volumeDelta *volumedelta.Analyzer
}

// NewAnalyzer создает анализатор таймфрейма
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	atrPeriod := cfg.ATRPeriod
	if atrPeriod <= 0 {
		atrPeriod = volatility.DefaultPeriod
	}
	return &Analyzer{
		atrPeriod:   atrPeriod,
		structure:   structure.NewAnalyzer(cfg.StructureLookback),
		orderBlocks: orderblock.NewDetector(cfg.MaxOrderBlocks),
		gaps:        fvg.NewDetector(cfg.MaxFairValueGaps),
		liquidity:   liquidity.NewDetector(cfg.LiquidityLookback, cfg.MaxLiquidityLevels),
		volumeDelta: volumedelta.NewAnalyzer(cfg.VolumeDelta),
	}
}

// Analyze возвращает nil для пустого ряда
func (a *Analyzer) Analyze(candles []*models.Candle) *models.TimeframeAnalysis {
	if len(candles) == 0 {
		return nil
	}

	marketStructure := a.structure.Analyze(candles)

	return &models.TimeframeAnalysis{
		Price:           candles[len(candles)-1].Close,
		Trend:           marketStructure.Trend,
		Structure:       marketStructure,
		OrderBlocks:     a.orderBlocks.Detect(candles),
		FairValueGaps:   a.gaps.Detect(candles),
		LiquidityLevels: a.liquidity.Detect(candles),
		ATR:             volatility.ATR(candles, a.atrPeriod),
		VolumeDelta:     a.volumeDelta.Analyze(candles),
	}
}
