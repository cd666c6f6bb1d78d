package backtest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	applogger "AstroPulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fakeStore struct {
	candles []models.Candle
	signals []models.SignalRecord
	err     error
}

func (f *fakeStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeStore) GetLatestNCandles(_ context.Context, _ string, _ int, _ domrepo.Timeframe) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeStore) GetMetricSample(_ context.Context, _ string, _ time.Duration) (models.MetricSample, error) {
	return models.MetricSample{}, nil
}

func (f *fakeStore) GetSignals(_ context.Context, _ string, _, _ time.Time) ([]models.SignalRecord, error) {
	return f.signals, f.err
}

func (f *fakeStore) StoreSignal(_ context.Context, _ models.SignalRecord) error { return nil }
func (f *fakeStore) Health(_ context.Context) error                             { return nil }
func (f *fakeStore) Close() error                                               { return nil }

type fakeRetrain struct {
	mu     sync.Mutex
	calls  int
	symbol string
	err    error
}

func (f *fakeRetrain) TriggerRetrain(_ context.Context, symbol string, _, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.symbol = symbol
	return f.err
}

var t0 = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

// hourlyCandles builds consecutive 1h candles with the given closes.
func hourlyCandles(closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Bucket: t0.Add(time.Duration(i) * time.Hour), Symbol: "BTC", Close: c}
	}
	return out
}

func sigAt(hour int, dir models.Direction) models.SignalRecord {
	return models.SignalRecord{
		Symbol:    "BTC",
		Direction: dir,
		Timestamp: t0.Add(time.Duration(hour) * time.Hour),
	}
}

func TestRunRejectsInvalidRange(t *testing.T) {
	r := NewRunner(&fakeStore{}, testLogger(t))

	if _, err := r.Run(context.Background(), "BTC", t0, t0); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("equal from/to must be rejected, got %v", err)
	}
	if _, err := r.Run(context.Background(), "BTC", t0.Add(time.Hour), t0); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("reversed range must be rejected, got %v", err)
	}
}

func TestRunZeroSignals(t *testing.T) {
	r := NewRunner(&fakeStore{candles: hourlyCandles(100, 101, 102)}, testLogger(t))

	run, err := r.Run(context.Background(), "BTC", t0, t0.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("zero signals must not error: %v", err)
	}
	if run.Metrics.TotalTrades != 0 || run.Metrics.SharpeRatio != 0 || run.Metrics.HitRate != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", run.Metrics)
	}
	if run.RetrainTriggered {
		t.Fatalf("zero-trade run must never trigger retraining")
	}
	if run.BacktestID == "" {
		t.Fatalf("run must carry an id")
	}
}

func TestRunScoresDirectionalSignals(t *testing.T) {
	store := &fakeStore{
		candles: hourlyCandles(100, 102, 101, 99, 100),
		signals: []models.SignalRecord{
			sigAt(0, models.DirectionBullish), // 100 -> 102: +2%, hit
			sigAt(1, models.DirectionNeutral), // skipped, no position
			sigAt(2, models.DirectionBearish), // 101 -> 99: ret -1.98%, pnl +1.98%, hit
			sigAt(3, models.DirectionBullish), // 99 -> 100: +1.01%, hit
		},
	}
	r := NewRunner(store, testLogger(t))

	run, err := r.Run(context.Background(), "BTC", t0, t0.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := run.Metrics.TotalTrades; got != 3 {
		t.Fatalf("expected 3 trades (neutral skipped), got %d", got)
	}
	if run.Metrics.Hits != 3 || run.Metrics.HitRate != 1 {
		t.Fatalf("expected all hits, got %+v", run.Metrics)
	}

	bear := run.Trades[1]
	if bear.Direction != models.DirectionBearish {
		t.Fatalf("unexpected trade order: %+v", run.Trades)
	}
	if bear.RealizedReturn >= 0 {
		t.Fatalf("bearish trade's realized return should be negative, got %v", bear.RealizedReturn)
	}
	if bear.PnL <= 0 || !bear.Hit {
		t.Fatalf("falling price must profit a bearish signal: %+v", bear)
	}
}

func TestRunSkipsSignalsAtDataEdge(t *testing.T) {
	store := &fakeStore{
		candles: hourlyCandles(100, 101),
		signals: []models.SignalRecord{
			sigAt(1, models.DirectionBullish), // entry is the last candle, no exit
			sigAt(5, models.DirectionBullish), // after all candles
		},
	}
	r := NewRunner(store, testLogger(t))

	run, err := r.Run(context.Background(), "BTC", t0, t0.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Metrics.TotalTrades != 0 {
		t.Fatalf("edge signals must be dropped, got %d trades", run.Metrics.TotalTrades)
	}
}

func TestRunRetrainOnHighSharpe(t *testing.T) {
	// Uniformly positive PnL with slight variation: high Sharpe.
	store := &fakeStore{
		candles: hourlyCandles(100, 102, 104.1, 106.2, 108.4, 110),
		signals: []models.SignalRecord{
			sigAt(0, models.DirectionBullish),
			sigAt(1, models.DirectionBullish),
			sigAt(2, models.DirectionBullish),
			sigAt(3, models.DirectionBullish),
		},
	}
	trig := &fakeRetrain{}
	r := NewRunner(store, testLogger(t), WithRetrainTrigger(trig, 1.5))

	run, err := r.Run(context.Background(), "BTC", t0, t0.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Metrics.SharpeRatio <= 1.5 {
		t.Fatalf("fixture must clear the sharpe threshold, got %v", run.Metrics.SharpeRatio)
	}
	if !run.RetrainTriggered {
		t.Fatalf("expected retraining trigger")
	}
	if run.RetrainError != "" {
		t.Fatalf("unexpected retrain error %q", run.RetrainError)
	}
	if trig.calls != 1 || trig.symbol != "BTC" {
		t.Fatalf("trigger not invoked as expected: %+v", trig)
	}
}

func TestRunRetrainFailureDoesNotFailBacktest(t *testing.T) {
	store := &fakeStore{
		candles: hourlyCandles(100, 102, 104.1, 106.2, 108.4, 110),
		signals: []models.SignalRecord{
			sigAt(0, models.DirectionBullish),
			sigAt(1, models.DirectionBullish),
			sigAt(2, models.DirectionBullish),
		},
	}
	trig := &fakeRetrain{err: errors.New("queue unavailable")}
	r := NewRunner(store, testLogger(t), WithRetrainTrigger(trig, 0.5))

	run, err := r.Run(context.Background(), "BTC", t0, t0.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("retrain failure must not fail the backtest: %v", err)
	}
	if !run.RetrainTriggered {
		t.Fatalf("trigger attempt must still be recorded")
	}
	if run.RetrainError == "" {
		t.Fatalf("trigger failure must be reported in the result")
	}
}

func TestRunNoRetrainBelowThreshold(t *testing.T) {
	// Alternating wins and losses: Sharpe near zero.
	store := &fakeStore{
		candles: hourlyCandles(100, 102, 100, 102, 100, 102),
		signals: []models.SignalRecord{
			sigAt(0, models.DirectionBullish),
			sigAt(1, models.DirectionBullish),
			sigAt(2, models.DirectionBullish),
			sigAt(3, models.DirectionBullish),
		},
	}
	trig := &fakeRetrain{}
	r := NewRunner(store, testLogger(t), WithRetrainTrigger(trig, 1.5))

	run, err := r.Run(context.Background(), "BTC", t0, t0.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.RetrainTriggered || trig.calls != 0 {
		t.Fatalf("sharpe %v must not trigger retraining", run.Metrics.SharpeRatio)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	store := &fakeStore{
		candles: hourlyCandles(100, 101, 102, 103),
		signals: []models.SignalRecord{sigAt(0, models.DirectionBullish)},
	}
	r := NewRunner(store, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, "BTC", t0, t0.Add(4*time.Hour)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunStoreErrorPropagates(t *testing.T) {
	r := NewRunner(&fakeStore{err: errors.New("clickhouse down")}, testLogger(t))
	if _, err := r.Run(context.Background(), "BTC", t0, t0.Add(time.Hour)); err == nil {
		t.Fatalf("store failure must propagate")
	}
}
