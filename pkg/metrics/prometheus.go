package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles        *prometheus.CounterVec
	masterScore   *prometheus.GaugeVec
	signals       *prometheus.CounterVec
	alerts        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cycles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropulse_evaluation_cycles_total",
				Help: "Total number of signal evaluation cycles",
			},
			[]string{"symbol"},
		),
		masterScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "astropulse_master_score",
				Help: "Last master score per symbol",
			},
			[]string{"symbol"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropulse_signals_total",
				Help: "Total signals produced, by direction",
			},
			[]string{"symbol", "direction"},
		),
		alerts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropulse_alerts_triggered_total",
				Help: "Total alert rule triggers, by rule type",
			},
			[]string{"type"},
		),
		notifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropulse_notifications_total",
				Help: "Notification delivery attempts, by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astropulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle counts one evaluation cycle for a symbol.
func (r *Recorder) RecordCycle(symbol string) {
	r.cycles.WithLabelValues(symbol).Inc()
}

// RecordMasterScore records the latest master score for a symbol.
func (r *Recorder) RecordMasterScore(symbol string, score float64) {
	r.masterScore.WithLabelValues(symbol).Set(score)
}

// RecordSignal counts one produced signal by direction.
func (r *Recorder) RecordSignal(symbol, direction string) {
	r.signals.WithLabelValues(symbol, direction).Inc()
}

// RecordAlertTriggered counts one alert trigger by rule type.
func (r *Recorder) RecordAlertTriggered(alertType string) {
	r.alerts.WithLabelValues(alertType).Inc()
}

// RecordNotification counts one delivery attempt per channel.
func (r *Recorder) RecordNotification(channel string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	r.notifications.WithLabelValues(channel, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
