package notify

import (
	"context"

	"AstroPulse/internal/domain/models"
	domsvc "AstroPulse/internal/domain/service"
	applogger "AstroPulse/pkg/logger"
)

// LogNotifier writes alert events to the structured log. It never fails, so
// every trigger leaves at least one delivery trace.
type LogNotifier struct {
	l *applogger.Logger
}

func NewLogNotifier(l *applogger.Logger) *LogNotifier {
	return &LogNotifier{l: l}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, ev models.AlertEvent, _ models.AlertNotification) error {
	n.l.Info("alert triggered",
		applogger.String("alert_id", ev.AlertID),
		applogger.String("symbol", ev.Symbol),
		applogger.String("type", string(ev.Type)),
		applogger.String("message", ev.Message),
	)
	return nil
}

var _ domsvc.Notifier = (*LogNotifier)(nil)
