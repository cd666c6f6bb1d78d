package risk

import (
	"math"
	"sync"

	"AstroPulse/internal/domain/models"
)

// Clamp audit markers recorded in PositionSizeResult.ClampsApplied.
const (
	ClampKellyCap   = "kelly_cap"
	ClampBalanceCap = "balance_cap"
	ClampZeroFloor  = "zero_floor"
	ClampVolFloor   = "volatility_floor"
)

// Sizer computes risk-bounded position sizes via a clamped Kelly-criterion
// formula. Settings are process-wide and mutable; updates take effect on the
// next Calculate call, never retroactively.
type Sizer struct {
	mu       sync.RWMutex
	settings models.RiskSettings
}

func NewSizer(settings models.RiskSettings) *Sizer {
	return &Sizer{settings: settings}
}

// Settings returns a copy of the current settings.
func (s *Sizer) Settings() models.RiskSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings applies non-nil patch fields.
func (s *Sizer) UpdateSettings(patch models.RiskSettingsPatch) models.RiskSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.MaxKellyFraction != nil {
		s.settings.MaxKellyFraction = *patch.MaxKellyFraction
	}
	if patch.MaxBalanceFraction != nil {
		s.settings.MaxBalanceFraction = *patch.MaxBalanceFraction
	}
	if patch.MinEdge != nil {
		s.settings.MinEdge = *patch.MinEdge
	}
	if patch.DefaultVolatility != nil {
		s.settings.DefaultVolatility = *patch.DefaultVolatility
	}
	if patch.MinHistory != nil {
		s.settings.MinHistory = *patch.MinHistory
	}
	return s.settings
}

// Calculate sizes a position for the given prediction. prediction is the
// predicted fractional move (signed), confidence in [0,1]. The raw Kelly
// fraction edge/variance is never applied unclamped: the clamp chain is
// (1) Kelly cap, (2) balance-fraction cap, (3) zero floor, each recorded.
func (s *Sizer) Calculate(prediction, confidence, currentPrice, accountBalance float64, priceHistory []float64) models.PositionSizeResult {
	cfg := s.Settings()

	clamps := make([]string, 0, 3)

	vol, volFallback := volatility(priceHistory, cfg.MinHistory)
	if volFallback {
		vol = cfg.DefaultVolatility
		clamps = append(clamps, ClampVolFloor)
	}
	variance := vol * vol

	edge := prediction * confidence
	rawKelly := 0.0
	if variance > 0 {
		rawKelly = edge / variance
	}

	kelly := rawKelly
	if math.Abs(kelly) > cfg.MaxKellyFraction {
		kelly = math.Copysign(cfg.MaxKellyFraction, kelly)
		clamps = append(clamps, ClampKellyCap)
	}

	// Direction is expressed via the recommendation; size is magnitude only.
	fraction := math.Abs(kelly)
	if fraction > cfg.MaxBalanceFraction {
		fraction = cfg.MaxBalanceFraction
		clamps = append(clamps, ClampBalanceCap)
	}
	if fraction < 0 {
		fraction = 0
		clamps = append(clamps, ClampZeroFloor)
	}

	rec := models.RecommendationHold
	switch {
	case edge > cfg.MinEdge:
		rec = models.RecommendationBuy
	case edge < -cfg.MinEdge:
		rec = models.RecommendationSell
	}
	if rec == models.RecommendationHold {
		fraction = 0
	}

	value := fraction * accountBalance
	size := 0.0
	if currentPrice > 0 {
		size = value / currentPrice
	}

	return models.PositionSizeResult{
		PositionSize:   size,
		PositionValue:  value,
		KellyFraction:  kelly,
		RawKelly:       rawKelly,
		Volatility:     vol,
		VolFallback:    volFallback,
		Recommendation: rec,
		ClampsApplied:  clamps,
	}
}

// volatility estimates recent volatility as the stddev of simple returns of
// the supplied price window. Returns fallback=true when the history is too
// short for an estimate.
func volatility(prices []float64, minHistory int) (float64, bool) {
	if minHistory < 2 {
		minHistory = 2
	}
	if len(prices) < minHistory {
		return 0, true
	}

	rets := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		rets = append(rets, prices[i]/prices[i-1]-1)
	}
	if len(rets) < 2 {
		return 0, true
	}

	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))

	variance := 0.0
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets) - 1)

	vol := math.Sqrt(variance)
	if vol == 0 {
		return 0, true
	}
	return vol, false
}
