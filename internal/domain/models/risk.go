package models

// Recommendation is the trade action derived from the directional edge.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// PositionSizeResult is the audited output of the Kelly position sizer.
// ClampsApplied explains any difference between KellyFraction and the raw
// edge/variance quotient.
type PositionSizeResult struct {
	PositionSize   float64        `json:"position_size"`  // units of the asset
	PositionValue  float64        `json:"position_value"` // quote currency
	KellyFraction  float64        `json:"kelly_fraction"` // after clamps
	RawKelly       float64        `json:"raw_kelly"`
	Volatility     float64        `json:"volatility"`
	VolFallback    bool           `json:"vol_fallback,omitempty"` // default volatility used
	Recommendation Recommendation `json:"recommendation"`
	ClampsApplied  []string       `json:"clamps_applied"`
}

// RiskSettings is the mutable process-wide sizing configuration. Updates take
// effect on the next Calculate call.
type RiskSettings struct {
	MaxKellyFraction   float64 `json:"max_kelly_fraction" yaml:"max_kelly_fraction"`     // e.g. 0.25 = quarter-Kelly
	MaxBalanceFraction float64 `json:"max_balance_fraction" yaml:"max_balance_fraction"` // cap on position value / balance
	MinEdge            float64 `json:"min_edge" yaml:"min_edge"`                         // below this the recommendation is HOLD
	DefaultVolatility  float64 `json:"default_volatility" yaml:"default_volatility"`     // used when history is too short
	MinHistory         int     `json:"min_history" yaml:"min_history"`                   // prices needed for a volatility estimate
}

// RiskSettingsPatch partially updates RiskSettings; nil fields are untouched.
type RiskSettingsPatch struct {
	MaxKellyFraction   *float64 `json:"max_kelly_fraction,omitempty"`
	MaxBalanceFraction *float64 `json:"max_balance_fraction,omitempty"`
	MinEdge            *float64 `json:"min_edge,omitempty"`
	DefaultVolatility  *float64 `json:"default_volatility,omitempty"`
	MinHistory         *int     `json:"min_history,omitempty"`
}
