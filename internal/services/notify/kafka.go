package notify

import (
	"context"
	"fmt"

	"AstroPulse/internal/domain/models"
	domsvc "AstroPulse/internal/domain/service"
	pkgkafka "AstroPulse/pkg/kafka"
)

// KafkaNotifier publishes alert events to a Kafka topic for downstream
// consumers (dashboards, bots). Keyed by symbol so per-symbol ordering holds.
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaNotifier(producer *pkgkafka.Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (k *KafkaNotifier) Name() string { return "kafka" }

func (k *KafkaNotifier) Notify(ctx context.Context, ev models.AlertEvent, _ models.AlertNotification) error {
	if err := k.producer.Publish(ctx, k.topic, []byte(ev.Symbol), ev); err != nil {
		return fmt.Errorf("publish alert event: %w", err)
	}
	return nil
}

var _ domsvc.Notifier = (*KafkaNotifier)(nil)
