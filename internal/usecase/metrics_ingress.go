package usecase

import (
	"context"
	"encoding/json"
	"time"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	mid "AstroPulse/internal/middleware"
	pkgkafka "AstroPulse/pkg/kafka"
)

// MetricsIngress consumes raw metric batches from Kafka and forwards them
// into the ingest pipeline.
type MetricsIngress struct {
	topic   string
	proc    mid.Proc
	metrics domrepo.Metrics
}

func NewMetricsIngress(topic string, proc mid.Proc, metrics domrepo.Metrics) *MetricsIngress {
	return &MetricsIngress{topic: topic, proc: proc, metrics: metrics}
}

func (h *MetricsIngress) Topic() string { return h.topic }

// incoming message schema: {symbol, price, ts, metrics:{key: value|null}, prediction?}
func (h *MetricsIngress) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol     string              `json:"symbol"`
		Price      float64             `json:"price"`
		TS         int64               `json:"ts"`
		Metrics    map[string]*float64 `json:"metrics"`
		Prediction *float64            `json:"prediction"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("ingress_unmarshal")
		return err
	}
	if m.TS > 1e11 { // ms
		m.TS = m.TS / 1000
	}
	ts := time.Now().UTC()
	if m.TS > 0 {
		ts = time.Unix(m.TS, 0).UTC()
		h.metrics.RecordLatency("ingress_e2e_seconds", time.Since(ts).Seconds())
	}

	err := h.proc.Process(ctx, &models.MetricBatch{
		Symbol:     m.Symbol,
		Price:      m.Price,
		Metrics:    m.Metrics,
		Prediction: m.Prediction,
		Timestamp:  ts,
	})
	if err != nil {
		h.metrics.RecordError("ingress_process")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*MetricsIngress)(nil)
