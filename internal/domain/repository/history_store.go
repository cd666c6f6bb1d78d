package repository

import (
	"context"
	"time"

	"AstroPulse/internal/domain/models"
)

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m Timeframe = "1m"
	TF5m Timeframe = "5m"
	TF1h Timeframe = "1h"
	TF1d Timeframe = "1d"
)

// HistoryStore provides read access to price history, metric samples and
// persisted signals, plus append-only signal persistence. Backtests and
// normalization bounds refresh both read through this interface.
type HistoryStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)

	// GetMetricSample summarizes the trailing window of one raw metric for
	// normalization bounds. A zero Count means no history exists.
	GetMetricSample(ctx context.Context, metricKey string, window time.Duration) (models.MetricSample, error)

	GetSignals(ctx context.Context, symbol string, from, to time.Time) ([]models.SignalRecord, error)
	StoreSignal(ctx context.Context, rec models.SignalRecord) error

	Health(ctx context.Context) error
	Close() error
}
