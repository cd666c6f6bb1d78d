package scoring

import (
	"context"
	"math"
	"testing"
	"time"

	"AstroPulse/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }

func TestNormalizeLinear(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"rsi_1h": {MetricKey: "rsi_1h", Count: 100, Min: 0, Max: 100},
	}}
	n := NewNormalizer(NewBoundsProvider(store, time.Hour))

	out := n.Normalize(context.Background(), map[string]*float64{"rsi_1h": fptr(85)})
	nm := out["rsi_1h"]
	if math.Abs(nm.Score-85) > 1e-9 {
		t.Fatalf("expected 85, got %v", nm.Score)
	}
	if nm.Imputed || nm.Fallback {
		t.Fatalf("unexpected flags %+v", nm)
	}
}

func TestNormalizeClampsOutOfRange(t *testing.T) {
	n := NewNormalizer(NewBoundsProvider(nil, time.Hour))

	out := n.Normalize(context.Background(), map[string]*float64{
		"tweetSentiment": fptr(3),  // above default max 1
		"macd_histogram": fptr(-9), // below default min -5
	})
	if s := out["tweetSentiment"].Score; s != 100 {
		t.Fatalf("expected clamp to 100, got %v", s)
	}
	if s := out["macd_histogram"].Score; s != 0 {
		t.Fatalf("expected clamp to 0, got %v", s)
	}
}

func TestNormalizeLogScale(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"marketCapUsd": {MetricKey: "marketCapUsd", Count: 100, Min: 1e6, Max: 1e12},
	}}
	n := NewNormalizer(NewBoundsProvider(store, time.Hour, WithLogScale(nil, 1000)))

	// Geometric midpoint of [1e6, 1e12] is 1e9: exactly half the log range.
	out := n.Normalize(context.Background(), map[string]*float64{"marketCapUsd": fptr(1e9)})
	if s := out["marketCapUsd"].Score; math.Abs(s-50) > 1e-9 {
		t.Fatalf("expected 50 at geometric midpoint, got %v", s)
	}

	// Values below the lower bound clamp up instead of producing negatives.
	out = n.Normalize(context.Background(), map[string]*float64{"marketCapUsd": fptr(10)})
	if s := out["marketCapUsd"].Score; s != 0 {
		t.Fatalf("expected 0 below min, got %v", s)
	}
}

func TestNormalizeMissingValueImputedNeutral(t *testing.T) {
	n := NewNormalizer(NewBoundsProvider(nil, time.Hour))

	out := n.Normalize(context.Background(), map[string]*float64{
		"rsi_1h":       nil,
		"marketCapUsd": nil, // log-scaled default range
	})
	for key, nm := range out {
		if !nm.Imputed {
			t.Fatalf("%s: expected imputed", key)
		}
		if math.Abs(nm.Score-50) > 1e-9 {
			t.Fatalf("%s: imputed score must be neutral 50, got %v", key, nm.Score)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"galaxyScore": {MetricKey: "galaxyScore", Count: 100, Min: 10, Max: 90},
	}}
	n := NewNormalizer(NewBoundsProvider(store, time.Hour))

	in := map[string]*float64{"galaxyScore": fptr(70)}
	a := n.Normalize(context.Background(), in)
	b := n.Normalize(context.Background(), in)
	if a["galaxyScore"].Score != b["galaxyScore"].Score {
		t.Fatalf("same input against unchanged bounds must score identically")
	}
}
