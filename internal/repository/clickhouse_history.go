package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	pkgch "AstroPulse/pkg/clickhouse"
	applogger "AstroPulse/pkg/logger"
)

// CHHistoryStore implements HistoryStore backed by ClickHouse. Candles and
// raw metric readings are written by the (external) ingestion side; signals
// are appended by the evaluation pipeline.
type CHHistoryStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client, database string) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHHistoryStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `, s.candleTable(tf))
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.logErr("get_candles", symbol, err)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 1024)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.logErr("get_candles_scan", symbol, err)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHHistoryStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, s.candleTable(tf))
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.logErr("get_latest_candles", symbol, err)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, n)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ascending order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *CHHistoryStore) GetMetricSample(ctx context.Context, metricKey string, window time.Duration) (models.MetricSample, error) {
	q := fmt.Sprintf(`
        SELECT count(), min(value), max(value), avg(value), stddevSamp(value)
        FROM %s.metric_readings
        WHERE metric = ? AND ts >= ?
    `, s.database)

	var sample models.MetricSample
	sample.MetricKey = metricKey

	var stddev sql.NullFloat64
	row := s.db.QueryRowContext(ctx, q, metricKey, time.Now().Add(-window))
	if err := row.Scan(&sample.Count, &sample.Min, &sample.Max, &sample.Mean, &stddev); err != nil {
		s.logErr("get_metric_sample", metricKey, err)
		return models.MetricSample{}, fmt.Errorf("get metric sample: %w", err)
	}
	if stddev.Valid {
		sample.StdDev = stddev.Float64
	}
	return sample, nil
}

func (s *CHHistoryStore) GetSignals(ctx context.Context, symbol string, from, to time.Time) ([]models.SignalRecord, error) {
	q := fmt.Sprintf(`
        SELECT symbol, direction, master_score, confidence, price, ts
        FROM %s.signals
        WHERE symbol = ? AND ts >= ? AND ts < ?
        ORDER BY ts ASC
    `, s.database)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.logErr("get_signals", symbol, err)
		return nil, fmt.Errorf("get signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignalRecord, 0, 256)
	for rows.Next() {
		var rec models.SignalRecord
		var dir string
		if err := rows.Scan(&rec.Symbol, &dir, &rec.MasterScore, &rec.Confidence, &rec.Price, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		rec.Direction = models.Direction(dir)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHHistoryStore) StoreSignal(ctx context.Context, rec models.SignalRecord) error {
	q := fmt.Sprintf(`
        INSERT INTO %s.signals (symbol, direction, master_score, confidence, price, ts)
        VALUES (?, ?, ?, ?, ?, ?)
    `, s.database)
	_, err := s.db.ExecContext(ctx, q,
		rec.Symbol, string(rec.Direction), rec.MasterScore, rec.Confidence, rec.Price, rec.Timestamp)
	if err != nil {
		s.logErr("store_signal", rec.Symbol, err)
		return fmt.Errorf("store signal: %w", err)
	}
	return nil
}

func (s *CHHistoryStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHHistoryStore) Close() error { return s.db.Close() }

func (s *CHHistoryStore) candleTable(tf domrepo.Timeframe) string {
	return fmt.Sprintf("%s.candles_%s", s.database, string(tf))
}

func (s *CHHistoryStore) logErr(op, key string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse query error",
		applogger.String("op", op),
		applogger.String("key", key),
		applogger.Error(err),
	)
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)
