package scoring

import (
	"testing"

	"AstroPulse/internal/domain/models"
)

func master(value float64, breakdown map[models.Pillar]float64) models.MasterScore {
	return models.MasterScore{Value: value, Breakdown: breakdown}
}

func TestInterpretDirectionThresholds(t *testing.T) {
	it := NewInterpreter(60, 40)

	cases := []struct {
		value float64
		want  models.Direction
	}{
		{75, models.DirectionBullish},
		{60.0001, models.DirectionBullish},
		{60, models.DirectionNeutral}, // boundary is exclusive
		{50, models.DirectionNeutral},
		{40, models.DirectionNeutral},
		{39.9999, models.DirectionBearish},
		{20, models.DirectionBearish},
	}
	for _, c := range cases {
		sig := it.Interpret("BTC", master(c.value, nil))
		if sig.Direction != c.want {
			t.Fatalf("master %v: expected %s, got %s", c.value, c.want, sig.Direction)
		}
	}
}

func TestConfidenceMonotoneInDistance(t *testing.T) {
	it := NewInterpreter(60, 40)
	breakdown := map[models.Pillar]float64{
		models.PillarTechnical:   70,
		models.PillarSocial:      70,
		models.PillarFundamental: 70,
		models.PillarAstrology:   70,
	}

	prev := -1.0
	for _, v := range []float64{50, 55, 65, 80, 95} {
		sig := it.Interpret("BTC", master(v, breakdown))
		if sig.Confidence < prev {
			t.Fatalf("confidence must not drop as distance from 50 grows: %v < %v at master %v",
				sig.Confidence, prev, v)
		}
		prev = sig.Confidence
	}
}

func TestConfidenceMonotoneInAgreement(t *testing.T) {
	it := NewInterpreter(60, 40)

	tight := map[models.Pillar]float64{
		models.PillarTechnical:   71,
		models.PillarSocial:      69,
		models.PillarFundamental: 70,
		models.PillarAstrology:   70,
	}
	spread := map[models.Pillar]float64{
		models.PillarTechnical:   100,
		models.PillarSocial:      40,
		models.PillarFundamental: 95,
		models.PillarAstrology:   45,
	}

	agree := it.Interpret("BTC", master(70, tight))
	disagree := it.Interpret("BTC", master(70, spread))
	if agree.Confidence <= disagree.Confidence {
		t.Fatalf("tight pillar agreement must score higher confidence: %v <= %v",
			agree.Confidence, disagree.Confidence)
	}
}

func TestConfidenceBounds(t *testing.T) {
	it := NewInterpreter(60, 40)

	if sig := it.Interpret("BTC", master(50, nil)); sig.Confidence != 0 {
		t.Fatalf("neutral midpoint must yield zero confidence, got %v", sig.Confidence)
	}
	sig := it.Interpret("BTC", master(100, map[models.Pillar]float64{
		models.PillarTechnical:   100,
		models.PillarSocial:      100,
		models.PillarFundamental: 100,
		models.PillarAstrology:   100,
	}))
	if sig.Confidence != 1 {
		t.Fatalf("extreme unanimous score must yield full confidence, got %v", sig.Confidence)
	}
}

func TestPillarAgreementSingleEntry(t *testing.T) {
	if got := pillarAgreement(map[models.Pillar]float64{models.PillarTechnical: 80}); got != 1 {
		t.Fatalf("fewer than two pillars must count as full agreement, got %v", got)
	}
}
