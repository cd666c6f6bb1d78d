package repository

import (
	"context"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	pkgkafka "AstroPulse/pkg/kafka"
)

// KafkaSignalPublisher emits evaluated signals to the signals topic, keyed
// by symbol for per-symbol ordering.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Symbol), s)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.Publisher = (*KafkaSignalPublisher)(nil)
