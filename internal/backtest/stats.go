package backtest

import (
	"math"

	"AstroPulse/internal/domain/models"
)

// computeMetrics aggregates per-trade results. Every division is guarded by
// the trade count: a zero-trade run yields a well-formed zeroed result.
func computeMetrics(trades []models.TradeResult, annualization float64) models.BacktestMetrics {
	m := models.BacktestMetrics{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return m
	}

	sum := 0.0
	for _, t := range trades {
		if t.Hit {
			m.Hits++
		}
		m.TotalPnL += t.PnL
		sum += t.PnL
	}
	m.HitRate = float64(m.Hits) / float64(m.TotalTrades)
	m.AvgReturn = sum / float64(m.TotalTrades)

	if len(trades) > 1 {
		variance := 0.0
		for _, t := range trades {
			d := t.PnL - m.AvgReturn
			variance += d * d
		}
		variance /= float64(len(trades) - 1)
		m.Volatility = math.Sqrt(variance)
	}

	if m.Volatility > 0 {
		m.SharpeRatio = m.AvgReturn / m.Volatility * math.Sqrt(annualization)
	}

	m.MaxDrawdown = maxDrawdown(trades)
	return m
}

// maxDrawdown is the largest peak-to-trough decline of the cumulative PnL
// curve.
func maxDrawdown(trades []models.TradeResult) float64 {
	cum, peak, worst := 0.0, 0.0, 0.0
	for _, t := range trades {
		cum += t.PnL
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > worst {
			worst = dd
		}
	}
	return worst
}
