package repository

import (
	"context"

	"AstroPulse/internal/domain/models"
)

// Publisher emits evaluated signals to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

// AlertStore owns the rule set and the bounded alert event history.
// Implementations must serialize mutations; handlers call concurrently.
type AlertStore interface {
	Insert(rule *models.AlertRule) error
	Update(id string, apply func(*models.AlertRule) error) error
	Delete(id string) bool
	Get(id string) (*models.AlertRule, bool)
	List() []*models.AlertRule
	ListActive(symbol string) []*models.AlertRule

	AppendEvent(ev models.AlertEvent)
	Events(limit int) []models.AlertEvent
}

// Metrics records operational metrics for the evaluation and alerting paths.
type Metrics interface {
	RecordCycle(symbol string)
	RecordMasterScore(symbol string, score float64)
	RecordSignal(symbol string, direction string)
	RecordAlertTriggered(alertType string)
	RecordNotification(channel string, ok bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
