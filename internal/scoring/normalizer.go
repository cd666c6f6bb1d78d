package scoring

import (
	"context"
	"math"

	"AstroPulse/internal/domain/models"
)

// Normalizer maps raw, unit-heterogeneous metric values onto the common
// [0,100] scale using per-metric bounds. Pure apart from the lazily cached
// bounds: identical inputs against unchanged bounds yield identical outputs.
type Normalizer struct {
	bounds *BoundsProvider
}

func NewNormalizer(bounds *BoundsProvider) *Normalizer {
	return &Normalizer{bounds: bounds}
}

// Normalize scores every input key. Missing (nil) values are substituted
// with the bounds midpoint before scaling, so every expected key always
// yields an output entry.
func (n *Normalizer) Normalize(ctx context.Context, raw map[string]*float64) map[string]models.NormalizedMetric {
	out := make(map[string]models.NormalizedMetric, len(raw))
	for key, val := range raw {
		b := n.bounds.Get(ctx, key)

		imputed := val == nil
		var v float64
		if imputed {
			v = midpoint(b)
		} else {
			v = *val
		}

		out[key] = models.NormalizedMetric{
			MetricKey: key,
			Score:     scale(v, b),
			Fallback:  b.Fallback,
			Imputed:   imputed,
		}
	}
	return out
}

// scale maps v onto [0,100] against bounds, clamped. Log-scale bounds are
// scaled in log10 space so magnitude-spanning metrics spread usefully.
func scale(v float64, b models.NormalizationBounds) float64 {
	min, max := b.Min, b.Max
	if b.LogScale {
		if min <= 0 {
			min = 1
		}
		if v < min {
			v = min
		}
		if max <= min {
			return 50
		}
		return clamp100(100 * (math.Log10(v) - math.Log10(min)) / (math.Log10(max) - math.Log10(min)))
	}
	if max == min {
		return 50
	}
	return clamp100(100 * (v - min) / (max - min))
}

// midpoint is the neutral raw value for a missing reading: the midpoint of
// the bounds (geometric midpoint for log-scaled metrics), which scales to 50.
func midpoint(b models.NormalizationBounds) float64 {
	if b.LogScale {
		min := b.Min
		if min <= 0 {
			min = 1
		}
		return math.Pow(10, (math.Log10(min)+math.Log10(b.Max))/2)
	}
	return (b.Min + b.Max) / 2
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
