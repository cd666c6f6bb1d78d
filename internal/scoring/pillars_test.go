package scoring

import (
	"context"
	"math"
	"testing"

	"AstroPulse/internal/domain/models"
)

func normScores(scores map[string]float64) map[string]models.NormalizedMetric {
	out := make(map[string]models.NormalizedMetric, len(scores))
	for k, v := range scores {
		out[k] = models.NormalizedMetric{MetricKey: k, Score: v}
	}
	return out
}

func TestAggregatorRenormalizesWeights(t *testing.T) {
	a := NewAggregator(map[models.Pillar]float64{
		models.PillarTechnical:   0.8,
		models.PillarSocial:      0.4,
		models.PillarFundamental: 0.5,
		models.PillarAstrology:   0.3,
	})
	total := 0.0
	for _, w := range a.Weights() {
		total += w
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("weights must sum to 1 after renormalization, got %v", total)
	}
	if w := a.Weights()[models.PillarTechnical]; math.Abs(w-0.4) > 1e-9 {
		t.Fatalf("expected technical weight 0.4, got %v", w)
	}
}

func TestAggregatorZeroWeightsFallBackToEqual(t *testing.T) {
	a := NewAggregator(map[models.Pillar]float64{
		models.PillarTechnical: -1,
		models.PillarSocial:    0,
	})
	for p, w := range a.Weights() {
		if math.Abs(w-0.25) > 1e-9 {
			t.Fatalf("pillar %s: expected equal weight 0.25, got %v", p, w)
		}
	}
}

func TestAggregateMissingPillarStaysNeutral(t *testing.T) {
	a := NewAggregator(map[models.Pillar]float64{
		models.PillarTechnical:   0.40,
		models.PillarSocial:      0.20,
		models.PillarFundamental: 0.25,
		models.PillarAstrology:   0.15,
	})
	// Only technical metrics present; every other pillar must score 50.
	pillars, master := a.Aggregate(normScores(map[string]float64{
		"rsi_1h":         80,
		"macd_histogram": 80,
	}))
	for _, p := range []models.Pillar{models.PillarSocial, models.PillarFundamental, models.PillarAstrology} {
		if pillars[p] != 50 {
			t.Fatalf("pillar %s: expected neutral 50, got %v", p, pillars[p])
		}
	}
	if pillars[models.PillarTechnical] != 80 {
		t.Fatalf("expected technical 80, got %v", pillars[models.PillarTechnical])
	}
	want := 0.40*80 + 0.60*50
	if math.Abs(master.Value-want) > 1e-9 {
		t.Fatalf("expected master %v, got %v", want, master.Value)
	}
	if len(master.Breakdown) != 4 {
		t.Fatalf("breakdown must cover all pillars, got %d", len(master.Breakdown))
	}
}

func TestAggregateIntraPillarRenormalization(t *testing.T) {
	a := NewAggregator(nil)
	// galaxyScore (0.35) and tweetSentiment (0.25) only: the pillar score is
	// the weighted mean over the present weights, not diluted by absentees.
	pillars, _ := a.Aggregate(normScores(map[string]float64{
		"galaxyScore":    90,
		"tweetSentiment": 30,
	}))
	want := (0.35*90 + 0.25*30) / 0.60
	if math.Abs(pillars[models.PillarSocial]-want) > 1e-9 {
		t.Fatalf("expected social %v, got %v", want, pillars[models.PillarSocial])
	}
}

func TestAggregateMasterWithinRange(t *testing.T) {
	a := NewAggregator(nil)
	for _, score := range []float64{0, 100} {
		all := map[string]float64{}
		for _, metrics := range pillarMetrics {
			for _, mw := range metrics {
				all[mw.key] = score
			}
		}
		_, master := a.Aggregate(normScores(all))
		if master.Value < 0 || master.Value > 100 {
			t.Fatalf("master out of range: %v", master.Value)
		}
		if math.Abs(master.Value-score) > 1e-9 {
			t.Fatalf("uniform inputs at %v should yield master %v, got %v", score, score, master.Value)
		}
	}
}

func TestBullishMetricsLiftMasterAboveBaseline(t *testing.T) {
	n := NewNormalizer(NewBoundsProvider(nil, 0, WithLogScale([]string{"marketCapUsd"}, 1000)))
	a := NewAggregator(nil)

	baseline := map[string]*float64{"rsi_1h": fptr(50), "galaxyScore": fptr(50)}
	bullish := map[string]*float64{
		"rsi_1h":       fptr(85),
		"galaxyScore":  fptr(90),
		"marketCapUsd": fptr(7.8e10),
	}

	ctx := context.Background()
	_, mBase := a.Aggregate(n.Normalize(ctx, baseline))
	_, mBull := a.Aggregate(n.Normalize(ctx, bullish))

	if mBull.Value <= mBase.Value {
		t.Fatalf("overbought rsi and high galaxy score must lift the master score: %v <= %v",
			mBull.Value, mBase.Value)
	}
	if mBull.Value < 0 || mBull.Value > 100 {
		t.Fatalf("master out of range: %v", mBull.Value)
	}
}

func TestAggregateMonotoneInMetricScore(t *testing.T) {
	a := NewAggregator(nil)
	base := normScores(map[string]float64{"rsi_1h": 50})
	raised := normScores(map[string]float64{"rsi_1h": 85})

	_, mBase := a.Aggregate(base)
	_, mRaised := a.Aggregate(raised)
	if mRaised.Value <= mBase.Value {
		t.Fatalf("raising a metric must raise the master score: %v <= %v", mRaised.Value, mBase.Value)
	}
}
