package scoring

import (
	"math"

	"AstroPulse/internal/domain/models"
)

// metricWeight assigns one normalized metric a weight inside its pillar.
type metricWeight struct {
	key    string
	weight float64
}

// pillarMetrics is the fixed assignment of metric keys to pillars.
var pillarMetrics = map[models.Pillar][]metricWeight{
	models.PillarTechnical: {
		{"rsi_1h", 0.30},
		{"macd_histogram", 0.25},
		{"ma_ratio_50_200", 0.20},
		{"bollinger_position", 0.15},
		{"atr_pct", 0.10},
	},
	models.PillarSocial: {
		{"galaxyScore", 0.35},
		{"socialVolume", 0.25},
		{"tweetSentiment", 0.25},
		{"redditActivity", 0.15},
	},
	models.PillarFundamental: {
		{"marketCapUsd", 0.25},
		{"volume24hUsd", 0.20},
		{"priceChange24hPct", 0.25},
		{"activeAddresses", 0.15},
		{"txVolumeUsd", 0.15},
	},
	models.PillarAstrology: {
		{"moonPhase", 0.30},
		{"mercuryRetrograde", 0.30},
		{"jupiterAspect", 0.20},
		{"saturnAspect", 0.20},
	},
}

const neutralScore = 50.0

// Aggregator combines normalized metrics into the four pillar scores and the
// weighted master score. Deterministic and side-effect-free.
type Aggregator struct {
	weights map[models.Pillar]float64
}

// NewAggregator validates pillar weights and renormalizes them when they do
// not sum to 1 within tolerance. Zero/negative weight sets fall back to
// equal weighting.
func NewAggregator(weights map[models.Pillar]float64) *Aggregator {
	w := make(map[models.Pillar]float64, len(models.Pillars))
	total := 0.0
	for _, p := range models.Pillars {
		v := weights[p]
		if v < 0 {
			v = 0
		}
		w[p] = v
		total += v
	}
	if total <= 0 {
		for _, p := range models.Pillars {
			w[p] = 1.0 / float64(len(models.Pillars))
		}
	} else if math.Abs(total-1) > 1e-6 {
		for p := range w {
			w[p] /= total
		}
	}
	return &Aggregator{weights: w}
}

// Aggregate computes pillar scores and the master score from normalized
// metrics. A pillar with no scored metrics at all stays neutral.
func (a *Aggregator) Aggregate(normalized map[string]models.NormalizedMetric) (map[models.Pillar]float64, models.MasterScore) {
	pillars := make(map[models.Pillar]float64, len(models.Pillars))
	for _, p := range models.Pillars {
		pillars[p] = pillarScore(p, normalized)
	}

	master := 0.0
	breakdown := make(map[models.Pillar]float64, len(pillars))
	for p, score := range pillars {
		master += a.weights[p] * score
		breakdown[p] = score
	}

	return pillars, models.MasterScore{Value: clamp100(master), Breakdown: breakdown}
}

// Weights exposes the effective (renormalized) pillar weights.
func (a *Aggregator) Weights() map[models.Pillar]float64 {
	out := make(map[models.Pillar]float64, len(a.weights))
	for p, w := range a.weights {
		out[p] = w
	}
	return out
}

func pillarScore(p models.Pillar, normalized map[string]models.NormalizedMetric) float64 {
	sum, wsum := 0.0, 0.0
	for _, mw := range pillarMetrics[p] {
		nm, ok := normalized[mw.key]
		if !ok {
			continue
		}
		sum += mw.weight * nm.Score
		wsum += mw.weight
	}
	if wsum == 0 {
		return neutralScore
	}
	return clamp100(sum / wsum)
}
