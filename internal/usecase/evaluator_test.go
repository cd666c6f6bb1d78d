package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"AstroPulse/internal/alerts"
	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	"AstroPulse/internal/repository"
	"AstroPulse/internal/scoring"
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

type fakeHistoryStore struct {
	mu       sync.Mutex
	stored   []models.SignalRecord
	storeErr error
}

func (f *fakeHistoryStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (f *fakeHistoryStore) GetLatestNCandles(_ context.Context, _ string, _ int, _ domrepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (f *fakeHistoryStore) GetMetricSample(_ context.Context, _ string, _ time.Duration) (models.MetricSample, error) {
	return models.MetricSample{}, nil
}

func (f *fakeHistoryStore) GetSignals(_ context.Context, _ string, _, _ time.Time) ([]models.SignalRecord, error) {
	return nil, nil
}

func (f *fakeHistoryStore) StoreSignal(_ context.Context, rec models.SignalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	f.stored = append(f.stored, rec)
	return nil
}

func (f *fakeHistoryStore) Health(_ context.Context) error { return nil }
func (f *fakeHistoryStore) Close() error                   { return nil }

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.Signal
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, s *models.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, s)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type recordingMetrics struct {
	mu     sync.Mutex
	cycles int
	errors map[string]int
}

func (m *recordingMetrics) RecordCycle(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func (m *recordingMetrics) RecordMasterScore(string, float64) {}
func (m *recordingMetrics) RecordSignal(string, string)       {}
func (m *recordingMetrics) RecordAlertTriggered(string)       {}
func (m *recordingMetrics) RecordNotification(string, bool)   {}
func (m *recordingMetrics) RecordLatency(string, float64)     {}

func newTestEvaluator(t *testing.T, pub *fakePublisher, store *fakeHistoryStore, metrics *recordingMetrics) (*Evaluator, *alerts.Engine) {
	t.Helper()
	l := testLogger(t)
	bounds := scoring.NewBoundsProvider(nil, time.Hour)
	engine := alerts.NewEngine(repository.NewMemoryAlertStore(50), nil, l)
	e := NewEvaluator(
		scoring.NewNormalizer(bounds),
		scoring.NewAggregator(nil),
		scoring.NewInterpreter(60, 40),
		engine,
		pub,
		store,
		metrics,
		l,
	)
	return e, engine
}

func fptr(v float64) *float64 { return &v }

func TestEvaluateRequiresSymbol(t *testing.T) {
	e, _ := newTestEvaluator(t, &fakePublisher{}, &fakeHistoryStore{}, &recordingMetrics{})
	if _, err := e.Evaluate(context.Background(), EvaluationInput{Price: 100}); err == nil {
		t.Fatalf("missing symbol must be rejected")
	}
}

func TestEvaluateFullCycle(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeHistoryStore{}
	metrics := &recordingMetrics{}
	e, _ := newTestEvaluator(t, pub, store, metrics)

	res, err := e.Evaluate(context.Background(), EvaluationInput{
		Symbol: "BTC",
		Price:  65000,
		Metrics: map[string]*float64{
			"rsi_1h":      fptr(85), // default bounds 0..100 -> score 85
			"galaxyScore": nil,      // imputed neutral
		},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if res.Normalized["rsi_1h"].Score != 85 {
		t.Fatalf("unexpected rsi score %v", res.Normalized["rsi_1h"].Score)
	}
	if nm := res.Normalized["galaxyScore"]; !nm.Imputed || nm.Score != 50 {
		t.Fatalf("nil metric must impute neutral, got %+v", nm)
	}
	if res.Pillars[models.PillarAstrology] != 50 {
		t.Fatalf("untouched pillar must stay neutral, got %v", res.Pillars[models.PillarAstrology])
	}
	if res.Signal.MasterScore.Value <= 50 {
		t.Fatalf("bullish technicals must lift the master score, got %v", res.Signal.MasterScore.Value)
	}

	if len(pub.published) != 1 {
		t.Fatalf("signal not published")
	}
	if len(store.stored) != 1 || store.stored[0].Symbol != "BTC" {
		t.Fatalf("signal not persisted: %+v", store.stored)
	}
	if metrics.cycles != 1 {
		t.Fatalf("cycle not recorded")
	}
}

func TestEvaluateDerivedPredictedChange(t *testing.T) {
	e, engine := newTestEvaluator(t, &fakePublisher{}, &fakeHistoryStore{}, &recordingMetrics{})

	// A threshold rule on predicted_change sees the derived value.
	if _, err := engine.Create(models.AlertRule{
		Type:       models.AlertTypeThreshold,
		Symbol:     "BTC",
		Conditions: models.AlertConditions{Metric: "predicted_change", Operator: ">", Value: 0.005},
	}); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	res, err := e.Evaluate(context.Background(), EvaluationInput{
		Symbol: "BTC",
		Price:  65000,
		Metrics: map[string]*float64{
			"rsi_1h":          fptr(95),
			"macd_histogram":  fptr(4),
			"ma_ratio_50_200": fptr(1.4),
		},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Alerts) != 1 {
		t.Fatalf("expected derived predicted change to trip the rule, master=%v",
			res.Signal.MasterScore.Value)
	}
	want := (res.Signal.MasterScore.Value - 50) / 50 * 0.05
	if math.Abs(res.Alerts[0].Snapshot.PredictedChange-want) > 1e-12 {
		t.Fatalf("expected derived change %v, got %v", want, res.Alerts[0].Snapshot.PredictedChange)
	}
}

func TestEvaluateExternalPredictionWins(t *testing.T) {
	e, engine := newTestEvaluator(t, &fakePublisher{}, &fakeHistoryStore{}, &recordingMetrics{})

	if _, err := engine.Create(models.AlertRule{
		Type:       models.AlertTypeThreshold,
		Symbol:     "BTC",
		Conditions: models.AlertConditions{Metric: "predicted_change", Operator: ">=", Value: 0.08},
	}); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	res, err := e.Evaluate(context.Background(), EvaluationInput{
		Symbol:     "BTC",
		Price:      65000,
		Metrics:    map[string]*float64{"rsi_1h": fptr(50)},
		Prediction: fptr(0.08),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Alerts) != 1 {
		t.Fatalf("external prediction must reach the alert snapshot")
	}
	if res.Alerts[0].Snapshot.PredictedChange != 0.08 {
		t.Fatalf("expected external prediction 0.08, got %v", res.Alerts[0].Snapshot.PredictedChange)
	}
}

func TestEvaluateSideEffectFailuresDoNotFailCycle(t *testing.T) {
	pub := &fakePublisher{err: errors.New("kafka down")}
	store := &fakeHistoryStore{storeErr: errors.New("clickhouse down")}
	metrics := &recordingMetrics{}
	e, _ := newTestEvaluator(t, pub, store, metrics)

	res, err := e.Evaluate(context.Background(), EvaluationInput{
		Symbol:  "BTC",
		Price:   65000,
		Metrics: map[string]*float64{"rsi_1h": fptr(60)},
	})
	if err != nil {
		t.Fatalf("side-effect failures must not fail evaluation: %v", err)
	}
	if res == nil || res.Signal.Symbol != "BTC" {
		t.Fatalf("caller must still get the signal")
	}
	if metrics.errors["publish_signal"] != 1 || metrics.errors["store_signal"] != 1 {
		t.Fatalf("failures must be recorded: %v", metrics.errors)
	}
}

func TestProcessAdaptsBatch(t *testing.T) {
	store := &fakeHistoryStore{}
	e, _ := newTestEvaluator(t, &fakePublisher{}, store, &recordingMetrics{})

	ts := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	err := e.Process(context.Background(), &models.MetricBatch{
		Symbol:    "ETH",
		Price:     3200,
		Metrics:   map[string]*float64{"rsi_1h": fptr(55)},
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(store.stored) != 1 || !store.stored[0].Timestamp.Equal(ts) {
		t.Fatalf("batch timestamp must flow through: %+v", store.stored)
	}

	if err := e.Process(context.Background(), nil); err == nil {
		t.Fatalf("nil batch must error")
	}
}
