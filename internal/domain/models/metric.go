package models

import "time"

// RawMetric is one named input signal for a single evaluation cycle.
// Value is nil when the upstream connector had no reading for this key.
type RawMetric struct {
	Key       string   `json:"key"`
	Value     *float64 `json:"value"`
	SourceTag string   `json:"source_tag"`
}

// NormalizationBounds holds per-metric scaling parameters derived from a
// trailing historical sample. Owned and cached by the normalizer.
type NormalizationBounds struct {
	MetricKey     string    `json:"metric_key"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	Mean          float64   `json:"mean,omitempty"`
	StdDev        float64   `json:"stddev,omitempty"`
	LogScale      bool      `json:"log_scale"`
	Fallback      bool      `json:"fallback"` // true when defaults were used (no history)
	LastRefreshed time.Time `json:"last_refreshed"`
}

// NormalizedMetric is a raw metric mapped onto the common 0-100 scale.
type NormalizedMetric struct {
	MetricKey string  `json:"metric_key"`
	Score     float64 `json:"score"` // in [0,100]
	Fallback  bool    `json:"fallback,omitempty"`
	Imputed   bool    `json:"imputed,omitempty"` // raw value was missing, neutral default used
}

// MetricBatch is one raw observation batch for a symbol, the unit that
// flows through the ingest pipeline into evaluation. A nil metric value
// means the upstream connector had no reading for that key.
type MetricBatch struct {
	Symbol     string              `json:"symbol"`
	Price      float64             `json:"price"`
	Metrics    map[string]*float64 `json:"metrics"`
	Prediction *float64            `json:"prediction,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

// MetricSample summarizes the historical distribution of one metric,
// queried from the history store when bounds are (re)initialized.
type MetricSample struct {
	MetricKey string
	Count     int
	Min       float64
	Max       float64
	Mean      float64
	StdDev    float64
}
