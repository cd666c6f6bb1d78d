package usecase

import (
	"context"
	"fmt"
	"time"

	"AstroPulse/internal/alerts"
	"AstroPulse/internal/domain/models"
	drepo "AstroPulse/internal/domain/repository"
	"AstroPulse/internal/scoring"
	"AstroPulse/internal/services/features"
	applogger "AstroPulse/pkg/logger"
)

// EvaluatorOption customizes the evaluation pipeline.
type EvaluatorOption func(*Evaluator)

// WithPredictedMoveScale sets the fractional move attributed to a master
// score at the extreme of the scale when no external prediction is supplied.
func WithPredictedMoveScale(scale float64) EvaluatorOption {
	return func(e *Evaluator) {
		if scale > 0 {
			e.moveScale = scale
		}
	}
}

// WithEnricher computes missing technical metrics from stored candles
// before normalization.
func WithEnricher(enricher *features.Enricher) EvaluatorOption {
	return func(e *Evaluator) { e.enricher = enricher }
}

// Evaluator runs one full evaluation cycle for a symbol: normalize raw
// metrics, aggregate pillars, interpret the signal, check alert rules,
// then publish and persist the result.
type Evaluator struct {
	normalizer  *scoring.Normalizer
	aggregator  *scoring.Aggregator
	interpreter *scoring.Interpreter
	engine      *alerts.Engine
	pub         drepo.Publisher
	store       drepo.HistoryStore
	metrics     drepo.Metrics
	logger      *applogger.Logger
	enricher    *features.Enricher
	moveScale   float64
}

// EvaluationInput is one raw observation batch for a symbol. Prediction is
// an optional externally supplied fractional move; when nil the predicted
// change is derived from the master score.
type EvaluationInput struct {
	Symbol     string
	Price      float64
	Metrics    map[string]*float64
	Prediction *float64
	Timestamp  time.Time
}

// EvaluationResult bundles everything one cycle produced.
type EvaluationResult struct {
	Signal     models.Signal                      `json:"signal"`
	Pillars    map[models.Pillar]float64          `json:"pillars"`
	Normalized map[string]models.NormalizedMetric `json:"normalized"`
	Alerts     []models.AlertEvent                `json:"alerts"`
}

func NewEvaluator(
	normalizer *scoring.Normalizer,
	aggregator *scoring.Aggregator,
	interpreter *scoring.Interpreter,
	engine *alerts.Engine,
	pub drepo.Publisher,
	store drepo.HistoryStore,
	metrics drepo.Metrics,
	l *applogger.Logger,
	opts ...EvaluatorOption,
) *Evaluator {
	e := &Evaluator{
		normalizer:  normalizer,
		aggregator:  aggregator,
		interpreter: interpreter,
		engine:      engine,
		pub:         pub,
		store:       store,
		metrics:     metrics,
		logger:      l,
		moveScale:   0.05,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the pipeline for a single input. Alert checking, publishing
// and persistence failures are recorded but do not fail the cycle; callers
// always get the computed signal back.
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluationInput) (*EvaluationResult, error) {
	if in.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	start := time.Now()
	ts := in.Timestamp
	if ts.IsZero() {
		ts = start.UTC()
	}

	raw := in.Metrics
	if e.enricher != nil {
		raw = e.enricher.Fill(ctx, in.Symbol, raw)
	}

	normalized := e.normalizer.Normalize(ctx, raw)
	pillars, master := e.aggregator.Aggregate(normalized)
	sig := e.interpreter.Interpret(in.Symbol, master)
	sig.Timestamp = ts

	snap := models.SignalSnapshot{
		Symbol:          sig.Symbol,
		Direction:       sig.Direction,
		MasterScore:     master.Value,
		Confidence:      sig.Confidence,
		PredictedChange: e.predictedChange(in.Prediction, master.Value),
		Price:           in.Price,
		Timestamp:       ts,
	}

	fired := e.engine.Check(ctx, snap)

	if e.pub != nil {
		if err := e.pub.Publish(ctx, &sig); err != nil {
			e.metrics.RecordError("publish_signal")
			e.logger.Error("publish signal", applogger.String("symbol", in.Symbol), applogger.Error(err))
		}
	}
	if e.store != nil {
		rec := models.SignalRecord{
			Symbol:      sig.Symbol,
			Direction:   sig.Direction,
			MasterScore: master.Value,
			Confidence:  sig.Confidence,
			Price:       in.Price,
			Timestamp:   ts,
		}
		if err := e.store.StoreSignal(ctx, rec); err != nil {
			e.metrics.RecordError("store_signal")
			e.logger.Error("store signal", applogger.String("symbol", in.Symbol), applogger.Error(err))
		}
	}

	e.metrics.RecordCycle(in.Symbol)
	e.metrics.RecordMasterScore(in.Symbol, master.Value)
	e.metrics.RecordSignal(in.Symbol, string(sig.Direction))
	e.metrics.RecordLatency("evaluate", time.Since(start).Seconds())

	return &EvaluationResult{
		Signal:     sig,
		Pillars:    pillars,
		Normalized: normalized,
		Alerts:     fired,
	}, nil
}

// Process adapts the evaluator to the ingest pipeline's downstream contract.
func (e *Evaluator) Process(ctx context.Context, b *models.MetricBatch) error {
	if b == nil {
		return fmt.Errorf("batch is nil")
	}
	_, err := e.Evaluate(ctx, EvaluationInput{
		Symbol:     b.Symbol,
		Price:      b.Price,
		Metrics:    b.Metrics,
		Prediction: b.Prediction,
		Timestamp:  b.Timestamp,
	})
	return err
}

// predictedChange prefers the external prediction; otherwise it maps the
// master score linearly so 100 corresponds to +moveScale and 0 to -moveScale.
func (e *Evaluator) predictedChange(external *float64, master float64) float64 {
	if external != nil {
		return *external
	}
	return (master - 50) / 50 * e.moveScale
}
