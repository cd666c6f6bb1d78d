package service

import (
	"context"
	"time"

	"AstroPulse/internal/domain/models"
)

// Notifier is one delivery channel for alert events. Channels fail
// independently; a Notify error never aborts the triggering evaluation.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev models.AlertEvent, cfg models.AlertNotification) error
}

// RetrainTrigger spawns an external model retraining job. Fire-and-forget
// from the caller's perspective; implementations own their own retries.
type RetrainTrigger interface {
	TriggerRetrain(ctx context.Context, symbol string, from, to time.Time) error
}
