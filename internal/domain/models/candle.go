package models

import "time"

// Candle is an OHLCV record, the unit of stored price history.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
