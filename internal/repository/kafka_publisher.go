package repository

import (
	"context"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"
	pkgkafka "StockSense/pkg/kafka"
)

// KafkaPublisher emits RecommendationIssued events keyed by primary ticker.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishRecommendation(ctx context.Context, ev *models.RecommendationIssued) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.PrimaryTicker), ev)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRecommendation(context.Context, *models.RecommendationIssued) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

var (
	_ domrepo.EventPublisher = (*KafkaPublisher)(nil)
	_ domrepo.EventPublisher = NoopPublisher{}
)
