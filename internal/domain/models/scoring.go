package models

import "time"

// Pillar identifies one of the four analytical dimensions.
type Pillar string

const (
	PillarTechnical   Pillar = "technical"
	PillarSocial      Pillar = "social"
	PillarFundamental Pillar = "fundamental"
	PillarAstrology   Pillar = "astrology"
)

// Pillars lists all pillars in stable order.
var Pillars = []Pillar{PillarTechnical, PillarSocial, PillarFundamental, PillarAstrology}

// PillarScore is a single pillar scored on the common 0-100 scale.
type PillarScore struct {
	Pillar Pillar  `json:"pillar"`
	Score  float64 `json:"score"`
}

// MasterScore is the weighted combination of the four pillar scores.
type MasterScore struct {
	Value     float64            `json:"value"` // in [0,100]
	Breakdown map[Pillar]float64 `json:"breakdown"`
}

// Direction is the interpreted trading direction of a signal.
type Direction string

const (
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
	DirectionNeutral Direction = "NEUTRAL"
)

// Signal is the interpreted output of one evaluation cycle for one symbol.
// Immutable once produced.
type Signal struct {
	Symbol      string      `json:"symbol"`
	Direction   Direction   `json:"direction"`
	MasterScore MasterScore `json:"master_score"`
	Confidence  float64     `json:"confidence"` // in [0,1]
	Timestamp   time.Time   `json:"timestamp"`
}

// SignalSnapshot is the flat view of a signal plus prediction context that
// alert predicates evaluate against. Field names here are the vocabulary of
// alert rule conditions.
type SignalSnapshot struct {
	Symbol          string    `json:"symbol"`
	Direction       Direction `json:"direction"`
	MasterScore     float64   `json:"master_score"`
	Confidence      float64   `json:"confidence"`
	PredictedChange float64   `json:"predicted_change"` // fractional move, e.g. 0.03 = +3%
	Price           float64   `json:"price"`
	Timestamp       time.Time `json:"timestamp"`
}

// Field returns a named numeric field of the snapshot for threshold rules.
func (s SignalSnapshot) Field(name string) (float64, bool) {
	switch name {
	case "master_score", "masterScore", "score":
		return s.MasterScore, true
	case "confidence":
		return s.Confidence, true
	case "predicted_change", "predictedChange":
		return s.PredictedChange, true
	case "price":
		return s.Price, true
	default:
		return 0, false
	}
}
