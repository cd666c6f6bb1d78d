package features

import (
	"math"

	"AstroPulse/internal/domain/models"
)

// LogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func LogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over the last
// window returns using the provided number of bars per year.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// RSI computes Wilder's relative strength index over the last period bars.
// Returns 50 when there is not enough history.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}
	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if gain+loss == 0 {
		return 50
	}
	if loss == 0 {
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

// MARatio returns SMA(short)/SMA(long) of closes, or 1 when history is short.
func MARatio(closes []float64, short, long int) float64 {
	if short <= 0 || long <= 0 || len(closes) < long {
		return 1
	}
	sLong := sma(closes, long)
	if sLong == 0 {
		return 1
	}
	return sma(closes, short) / sLong
}

// BollingerPosition places the last close inside its Bollinger band:
// 0 at the lower band, 1 at the upper, 0.5 on the middle line.
func BollingerPosition(closes []float64, period int) float64 {
	if period <= 1 || len(closes) < period {
		return 0.5
	}
	mean := sma(closes, period)
	var sum2 float64
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - mean
		sum2 += d * d
	}
	sd := math.Sqrt(sum2 / float64(period))
	if sd == 0 {
		return 0.5
	}
	last := closes[len(closes)-1]
	pos := (last - (mean - 2*sd)) / (4 * sd)
	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}

// ATRPct computes the average true range over the last period bars as a
// percentage of the last close.
func ATRPct(candles []models.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}
	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		c := candles[i]
		prevClose := candles[i-1].Close
		tr := c.High - c.Low
		if d := math.Abs(c.High - prevClose); d > tr {
			tr = d
		}
		if d := math.Abs(c.Low - prevClose); d > tr {
			tr = d
		}
		sum += tr
	}
	last := candles[len(candles)-1].Close
	if last <= 0 {
		return 0
	}
	return sum / float64(period) / last * 100
}

func sma(xs []float64, n int) float64 {
	var sum float64
	for i := len(xs) - n; i < len(xs); i++ {
		sum += xs[i]
	}
	return sum / float64(n)
}
