package backtest

import (
	"math"
	"testing"

	"AstroPulse/internal/domain/models"
)

func trades(pnls ...float64) []models.TradeResult {
	out := make([]models.TradeResult, len(pnls))
	for i, p := range pnls {
		out[i] = models.TradeResult{PnL: p, Hit: p > 0}
	}
	return out
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := computeMetrics(nil, 8760)
	if m.TotalTrades != 0 || m.HitRate != 0 || m.SharpeRatio != 0 || m.MaxDrawdown != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", m)
	}
}

func TestComputeMetricsKnownFixture(t *testing.T) {
	m := computeMetrics(trades(0.02, -0.01, 0.03, -0.02), 8760)

	if m.TotalTrades != 4 || m.Hits != 2 {
		t.Fatalf("unexpected counts %+v", m)
	}
	if m.HitRate != 0.5 {
		t.Fatalf("expected hit rate 0.5, got %v", m.HitRate)
	}
	if math.Abs(m.TotalPnL-0.02) > 1e-12 {
		t.Fatalf("expected total pnl 0.02, got %v", m.TotalPnL)
	}
	if math.Abs(m.AvgReturn-0.005) > 1e-12 {
		t.Fatalf("expected avg return 0.005, got %v", m.AvgReturn)
	}

	// Sample stddev of {0.02,-0.01,0.03,-0.02} around 0.005.
	wantVol := math.Sqrt((0.015*0.015 + 0.015*0.015 + 0.025*0.025 + 0.025*0.025) / 3)
	if math.Abs(m.Volatility-wantVol) > 1e-12 {
		t.Fatalf("expected volatility %v, got %v", wantVol, m.Volatility)
	}
	wantSharpe := 0.005 / wantVol * math.Sqrt(8760)
	if math.Abs(m.SharpeRatio-wantSharpe) > 1e-9 {
		t.Fatalf("expected sharpe %v, got %v", wantSharpe, m.SharpeRatio)
	}
}

func TestComputeMetricsSingleTrade(t *testing.T) {
	m := computeMetrics(trades(0.04), 8760)
	if m.Volatility != 0 || m.SharpeRatio != 0 {
		t.Fatalf("one trade has no dispersion estimate, got %+v", m)
	}
	if m.HitRate != 1 || m.AvgReturn != 0.04 {
		t.Fatalf("unexpected single-trade metrics %+v", m)
	}
}

func TestMaxDrawdown(t *testing.T) {
	// Cumulative: 0.05, 0.08, 0.02, 0.04, -0.01. Peak 0.08, trough -0.01.
	got := maxDrawdown(trades(0.05, 0.03, -0.06, 0.02, -0.05))
	if math.Abs(got-0.09) > 1e-12 {
		t.Fatalf("expected drawdown 0.09, got %v", got)
	}

	if dd := maxDrawdown(trades(0.01, 0.02, 0.03)); dd != 0 {
		t.Fatalf("monotone gains have zero drawdown, got %v", dd)
	}
}
