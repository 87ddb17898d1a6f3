package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DispatchPayload asks a worker to run one campaign dispatch.
type DispatchPayload struct {
	CampaignID string   `json:"campaign_id"`
	Source     string   `json:"source,omitempty"`    // filtra leads pela origem
	Platforms  []string `json:"platforms,omitempty"` // só para campanhas social
	Origin     string   `json:"origin"`
}

type QueueProducerInterface interface {
	PublishDispatch(ctx context.Context, payload DispatchPayload) error
}

// publisher is the subset of *amqp.Channel the producer needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	ch  publisher
	now func() time.Time
}

func NewProducer(ch publisher) *RabbitMQProducer {
	return &RabbitMQProducer{ch: ch, now: time.Now}
}

// PublishDispatch sends a persistent message keyed by campaign id, so a
// consumer can correlate redeliveries of the same dispatch.
func (p *RabbitMQProducer) PublishDispatch(ctx context.Context, payload DispatchPayload) error {
	if payload.CampaignID == "" {
		return fmt.Errorf("campaign_id obrigatório para publicar disparo")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    p.now(),
		Headers:      amqp.Table{"campaign_id": payload.CampaignID},
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, msg); err != nil {
		return fmt.Errorf("falha ao publicar disparo da campanha %s: %w", payload.CampaignID, err)
	}
	return nil
}
