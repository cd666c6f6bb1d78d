package notify

import (
	"context"
	"fmt"
	"time"

	"AstroPulse/internal/domain/models"
	domsvc "AstroPulse/internal/domain/service"
	"AstroPulse/internal/service/ratelimit"
	xhttp "AstroPulse/pkg/http"
)

// WebhookNotifier delivers alert events as JSON POSTs to the rule's webhook
// URL. Delivery is best-effort; failures are the caller's to log, never to
// propagate. A per-URL token bucket keeps a misbehaving rule from hammering
// one endpoint.
type WebhookNotifier struct {
	client  *xhttp.Client
	limiter *ratelimit.Limiter
}

func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Notify(ctx context.Context, ev models.AlertEvent, cfg models.AlertNotification) error {
	if cfg.WebhookURL == "" {
		return fmt.Errorf("webhook url not configured for alert %s", ev.AlertID)
	}
	if !w.limiter.Allow(cfg.WebhookURL, 10, 1) {
		return fmt.Errorf("webhook rate limited: %s", cfg.WebhookURL)
	}
	err := w.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    cfg.WebhookURL,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: ev,
	}, nil)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	return nil
}

var _ domsvc.Notifier = (*WebhookNotifier)(nil)
