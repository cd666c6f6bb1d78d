package features

import (
	"math"
	"testing"
	"time"

	"AstroPulse/internal/domain/models"
)

func TestRSIKnownValues(t *testing.T) {
	// 14 straight gains: RSI saturates at 100.
	up := make([]float64, 15)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	if got := RSI(up, 14); got != 100 {
		t.Fatalf("all gains must score 100, got %v", got)
	}

	// 14 straight losses: no gains, RSI 0.
	down := make([]float64, 15)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	if got := RSI(down, 14); got != 0 {
		t.Fatalf("all losses must score 0, got %v", got)
	}

	// Equal gains and losses: RSI 50.
	flatish := []float64{100, 101, 100, 101, 100}
	if got := RSI(flatish, 4); math.Abs(got-50) > 1e-9 {
		t.Fatalf("balanced moves must score 50, got %v", got)
	}
}

func TestRSIInsufficientHistory(t *testing.T) {
	if got := RSI([]float64{100, 101}, 14); got != 50 {
		t.Fatalf("short history must default to 50, got %v", got)
	}
	if got := RSI(nil, 14); got != 50 {
		t.Fatalf("nil closes must default to 50, got %v", got)
	}
	// No movement at all: gains and losses are both zero.
	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}
	if got := RSI(flat, 14); got != 50 {
		t.Fatalf("flat prices must score 50, got %v", got)
	}
}

func TestMARatio(t *testing.T) {
	// Rising series: the short average sits above the long one.
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	if got := MARatio(closes, 50, 200); got <= 1 {
		t.Fatalf("uptrend must yield ratio above 1, got %v", got)
	}
	if got := MARatio(closes[:100], 50, 200); got != 1 {
		t.Fatalf("short history must fall back to 1, got %v", got)
	}
}

func TestBollingerPosition(t *testing.T) {
	base := make([]float64, 20)
	for i := range base {
		if i%2 == 0 {
			base[i] = 100
		} else {
			base[i] = 102
		}
	}
	pos := BollingerPosition(base, 20)
	if pos < 0 || pos > 1 {
		t.Fatalf("position out of band: %v", pos)
	}

	if got := BollingerPosition([]float64{100, 100, 100}, 3); got != 0.5 {
		t.Fatalf("zero-width band must map to 0.5, got %v", got)
	}
	if got := BollingerPosition([]float64{100}, 20); got != 0.5 {
		t.Fatalf("short history must map to 0.5, got %v", got)
	}
}

func TestATRPct(t *testing.T) {
	candles := make([]models.Candle, 15)
	for i := range candles {
		candles[i] = models.Candle{
			Bucket: time.Date(2026, 8, 1, i, 0, 0, 0, time.UTC),
			High:   102,
			Low:    98,
			Close:  100,
		}
	}
	// Constant 4-point true range against a close of 100: 4%.
	if got := ATRPct(candles, 14); math.Abs(got-4) > 1e-9 {
		t.Fatalf("expected 4%%, got %v", got)
	}
	if got := ATRPct(candles[:3], 14); got != 0 {
		t.Fatalf("short history must yield 0, got %v", got)
	}
}

func TestLogReturnsAndRealizedVolatility(t *testing.T) {
	candles := []models.Candle{
		{Close: 100}, {Close: 110}, {Close: 99},
	}
	rets := LogReturns(candles)
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if math.Abs(rets[0]-math.Log(1.1)) > 1e-12 {
		t.Fatalf("unexpected first return %v", rets[0])
	}

	if got := RealizedVolatility(rets, 2, 8760); got <= 0 {
		t.Fatalf("volatile series must yield positive vol, got %v", got)
	}
	if got := RealizedVolatility(rets, 5, 8760); got != 0 {
		t.Fatalf("window larger than history must yield 0, got %v", got)
	}
}
