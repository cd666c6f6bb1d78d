package features

import (
	"context"
	"errors"
	"testing"
	"time"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	applogger "AstroPulse/pkg/logger"
)

type fakeCandleStore struct {
	candles []models.Candle
	err     error
	calls   int
}

func (f *fakeCandleStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeCandleStore) GetLatestNCandles(_ context.Context, _ string, _ int, _ domrepo.Timeframe) ([]models.Candle, error) {
	f.calls++
	return f.candles, f.err
}

func (f *fakeCandleStore) GetMetricSample(_ context.Context, _ string, _ time.Duration) (models.MetricSample, error) {
	return models.MetricSample{}, nil
}

func (f *fakeCandleStore) GetSignals(_ context.Context, _ string, _, _ time.Time) ([]models.SignalRecord, error) {
	return nil, nil
}

func (f *fakeCandleStore) StoreSignal(_ context.Context, _ models.SignalRecord) error { return nil }
func (f *fakeCandleStore) Health(_ context.Context) error                             { return nil }
func (f *fakeCandleStore) Close() error                                               { return nil }

func enricherLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	p := 100.0
	for i := range out {
		if i%2 == 0 {
			p *= 1.01
		} else {
			p *= 0.996
		}
		out[i] = models.Candle{
			Bucket: time.Date(2026, 8, 1, 0, i, 0, 0, time.UTC),
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
		}
	}
	return out
}

func TestFillComputesMissingTechnicals(t *testing.T) {
	store := &fakeCandleStore{candles: testCandles(200)}
	e := NewEnricher(store, domrepo.TF1h, 200, enricherLogger(t))

	out := e.Fill(context.Background(), "BTC", map[string]*float64{})
	for _, key := range []string{"rsi_1h", "ma_ratio_50_200", "bollinger_position", "atr_pct"} {
		if out[key] == nil {
			t.Fatalf("%s not filled", key)
		}
	}
	if *out["rsi_1h"] < 0 || *out["rsi_1h"] > 100 {
		t.Fatalf("rsi out of range: %v", *out["rsi_1h"])
	}
}

func TestFillKeepsProvidedValues(t *testing.T) {
	store := &fakeCandleStore{candles: testCandles(200)}
	e := NewEnricher(store, domrepo.TF1h, 200, enricherLogger(t))

	rsi := 72.0
	in := map[string]*float64{"rsi_1h": &rsi}
	out := e.Fill(context.Background(), "BTC", in)
	if *out["rsi_1h"] != 72 {
		t.Fatalf("provided value overwritten: %v", *out["rsi_1h"])
	}
	if out["atr_pct"] == nil {
		t.Fatalf("other missing keys must still be filled")
	}
}

func TestFillDoesNotMutateInput(t *testing.T) {
	store := &fakeCandleStore{candles: testCandles(200)}
	e := NewEnricher(store, domrepo.TF1h, 200, enricherLogger(t))

	in := map[string]*float64{}
	e.Fill(context.Background(), "BTC", in)
	if len(in) != 0 {
		t.Fatalf("input map was mutated: %v", in)
	}
}

func TestFillSkipsWhenComplete(t *testing.T) {
	store := &fakeCandleStore{candles: testCandles(200)}
	e := NewEnricher(store, domrepo.TF1h, 200, enricherLogger(t))

	one := 1.0
	in := map[string]*float64{
		"rsi_1h": &one, "ma_ratio_50_200": &one, "bollinger_position": &one, "atr_pct": &one,
	}
	e.Fill(context.Background(), "BTC", in)
	if store.calls != 0 {
		t.Fatalf("complete input must not hit the store, %d calls", store.calls)
	}
}

func TestFillStoreErrorLeavesMetricsUntouched(t *testing.T) {
	store := &fakeCandleStore{err: errors.New("clickhouse down")}
	e := NewEnricher(store, domrepo.TF1h, 200, enricherLogger(t))

	out := e.Fill(context.Background(), "BTC", map[string]*float64{})
	if len(out) != 0 {
		t.Fatalf("store failure must leave the metrics unchanged, got %v", out)
	}
}
