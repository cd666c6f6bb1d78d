package scoring

import (
	"math"
	"time"

	"AstroPulse/internal/domain/models"
)

// Interpreter converts a master score into a directional signal with
// confidence. Thresholds are symmetric around the neutral midpoint by
// default and come from configuration.
type Interpreter struct {
	upper float64
	lower float64
}

func NewInterpreter(upper, lower float64) *Interpreter {
	return &Interpreter{upper: upper, lower: lower}
}

const neutralMidpoint = 50.0

// Interpret derives direction from the master score against the thresholds
// and confidence from (a) distance from the neutral midpoint and (b) pillar
// agreement. Confidence is monotone in each factor with the other fixed.
func (it *Interpreter) Interpret(symbol string, master models.MasterScore) models.Signal {
	direction := models.DirectionNeutral
	switch {
	case master.Value > it.upper:
		direction = models.DirectionBullish
	case master.Value < it.lower:
		direction = models.DirectionBearish
	}

	distance := math.Abs(master.Value-neutralMidpoint) / neutralMidpoint
	agreement := pillarAgreement(master.Breakdown)
	confidence := clamp01(distance * (0.5 + 0.5*agreement))

	return models.Signal{
		Symbol:      symbol,
		Direction:   direction,
		MasterScore: master,
		Confidence:  confidence,
		Timestamp:   time.Now().UTC(),
	}
}

// pillarAgreement maps the stddev of pillar scores onto [0,1]: tight
// agreement scores 1, a spread of 25 points or more scores 0.
func pillarAgreement(breakdown map[models.Pillar]float64) float64 {
	if len(breakdown) < 2 {
		return 1
	}
	mean := 0.0
	for _, v := range breakdown {
		mean += v
	}
	mean /= float64(len(breakdown))

	variance := 0.0
	for _, v := range breakdown {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(breakdown))

	const maxSpread = 25.0
	return clamp01(1 - math.Sqrt(variance)/maxSpread)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
