package alerts

import (
	"testing"

	"AstroPulse/internal/domain/models"
)

func TestThresholdOperators(t *testing.T) {
	snap := models.SignalSnapshot{MasterScore: 72, Confidence: 0.6, PredictedChange: -0.02, Price: 150}

	cases := []struct {
		metric string
		op     string
		value  float64
		want   bool
	}{
		{"master_score", ">", 70, true},
		{"master_score", "gt", 70, true},
		{"master_score", "above", 80, false},
		{"masterScore", ">=", 72, true},
		{"score", "<", 72, false},
		{"confidence", "lt", 0.7, true},
		{"confidence", "below", 0.5, false},
		{"price", "eq", 150, true},
		{"price", "==", 149, false},
		{"price", "ne", 149, true},
		{"predicted_change", "<=", -0.02, true},
		{"predictedChange", "lte", -0.03, false},
	}
	for _, c := range cases {
		got, err := evalThreshold(models.AlertConditions{Metric: c.metric, Operator: c.op, Value: c.value}, snap)
		if err != nil {
			t.Fatalf("%s %s %v: unexpected error %v", c.metric, c.op, c.value, err)
		}
		if got != c.want {
			t.Fatalf("%s %s %v: expected %v, got %v", c.metric, c.op, c.value, c.want, got)
		}
	}
}

func TestThresholdUnknownMetricAndOperator(t *testing.T) {
	snap := models.SignalSnapshot{MasterScore: 72}

	if _, err := evalThreshold(models.AlertConditions{Metric: "rsi_1h", Operator: ">", Value: 1}, snap); err == nil {
		t.Fatalf("unknown metric must error")
	}
	if _, err := evalThreshold(models.AlertConditions{Metric: "master_score", Operator: "~=", Value: 1}, snap); err == nil {
		t.Fatalf("unknown operator must error")
	}
}

func TestTrendPredicate(t *testing.T) {
	bull := models.SignalSnapshot{Direction: models.DirectionBullish, Confidence: 0.7}
	bear := models.SignalSnapshot{Direction: models.DirectionBearish, Confidence: 0.7}
	flat := models.SignalSnapshot{Direction: models.DirectionNeutral, Confidence: 0.9}

	if !evalTrend(models.AlertConditions{Direction: "bullish", MinConfidence: 0.5}, bull) {
		t.Fatalf("bullish rule must match bullish signal")
	}
	if evalTrend(models.AlertConditions{Direction: "bullish"}, bear) {
		t.Fatalf("bullish rule must not match bearish signal")
	}
	if !evalTrend(models.AlertConditions{Direction: "any"}, bear) {
		t.Fatalf("any-direction rule must match bearish signal")
	}
	if !evalTrend(models.AlertConditions{}, bull) {
		t.Fatalf("empty direction behaves as any")
	}
	if evalTrend(models.AlertConditions{Direction: "any"}, flat) {
		t.Fatalf("neutral signals never match trend rules")
	}
	if evalTrend(models.AlertConditions{Direction: "bullish", MinConfidence: 0.8}, bull) {
		t.Fatalf("confidence below the minimum must not match")
	}
	if evalTrend(models.AlertConditions{Direction: "sideways"}, bull) {
		t.Fatalf("unrecognized direction must not match")
	}
}

func TestConfidencePredicate(t *testing.T) {
	snap := models.SignalSnapshot{Confidence: 0.75, PredictedChange: 0.04}

	if !evalConfidence(models.AlertConditions{ConfidenceMin: 0.7}, snap) {
		t.Fatalf("confidence in range must match (max defaults to 1)")
	}
	if evalConfidence(models.AlertConditions{ConfidenceMin: 0.8}, snap) {
		t.Fatalf("confidence below min must not match")
	}
	if evalConfidence(models.AlertConditions{ConfidenceMin: 0.1, ConfidenceMax: 0.5}, snap) {
		t.Fatalf("confidence above max must not match")
	}
	if !evalConfidence(models.AlertConditions{ConfidenceMin: 0.5, SignificantMove: 0.03}, snap) {
		t.Fatalf("move above the significance floor must match")
	}
	if evalConfidence(models.AlertConditions{ConfidenceMin: 0.5, SignificantMove: 0.05}, snap) {
		t.Fatalf("move below the significance floor must not match")
	}
	down := models.SignalSnapshot{Confidence: 0.75, PredictedChange: -0.06}
	if !evalConfidence(models.AlertConditions{ConfidenceMin: 0.5, SignificantMove: 0.05}, down) {
		t.Fatalf("significance uses the absolute move")
	}
}

func TestEvaluateUnknownType(t *testing.T) {
	rule := &models.AlertRule{ID: "x", Type: "lunar_eclipse"}
	hit, err := evaluate(rule, models.SignalSnapshot{})
	if err == nil {
		t.Fatalf("unknown type must surface an error")
	}
	if hit {
		t.Fatalf("unknown type must evaluate to false")
	}
}
