package features

import (
	"context"

	domrepo "AstroPulse/internal/domain/repository"
	applogger "AstroPulse/pkg/logger"
)

// Enricher fills technical metrics that the upstream connectors did not
// deliver by computing them locally from stored candles. Missing metrics
// stay missing when there is no usable price history; the normalizer then
// imputes a neutral score for them.
type Enricher struct {
	store domrepo.HistoryStore
	tf    domrepo.Timeframe
	bars  int
	l     *applogger.Logger
}

func NewEnricher(store domrepo.HistoryStore, tf domrepo.Timeframe, bars int, l *applogger.Logger) *Enricher {
	if bars <= 0 {
		bars = 200
	}
	return &Enricher{store: store, tf: tf, bars: bars, l: l}
}

// Fill returns metrics with computable technical keys added. The input map
// is not modified.
func (e *Enricher) Fill(ctx context.Context, symbol string, metrics map[string]*float64) map[string]*float64 {
	missing := make([]string, 0, 4)
	for _, key := range []string{"rsi_1h", "ma_ratio_50_200", "bollinger_position", "atr_pct"} {
		if v, ok := metrics[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return metrics
	}

	candles, err := e.store.GetLatestNCandles(ctx, symbol, e.bars, e.tf)
	if err != nil {
		e.l.Warn("enricher candles unavailable",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return metrics
	}
	if len(candles) < 2 {
		return metrics
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	out := make(map[string]*float64, len(metrics)+len(missing))
	for k, v := range metrics {
		out[k] = v
	}
	for _, key := range missing {
		var v float64
		switch key {
		case "rsi_1h":
			v = RSI(closes, 14)
		case "ma_ratio_50_200":
			v = MARatio(closes, 50, 200)
		case "bollinger_position":
			v = BollingerPosition(closes, 20)
		case "atr_pct":
			v = ATRPct(candles, 14)
		}
		val := v
		out[key] = &val
	}
	return out
}
