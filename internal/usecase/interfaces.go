package usecase

import (
	"context"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/infra/queue"
)

// NotificationDispatcher delivers one rendered message to one recipient.
type NotificationDispatcher interface {
	Send(ctx context.Context, msg entity.OutboundMessage) error
}

type SocialPublisher interface {
	Publish(ctx context.Context, content, platform string) error
}

type PaymentGateway interface {
	Authorize(ctx context.Context, req billing.AuthorizationRequest) (billing.AuthorizationResult, error)
	Void(ctx context.Context, transactionID string) error
}

type QueueProducerInterface interface {
	PublishDispatch(ctx context.Context, payload queue.DispatchPayload) error
}

// Metrics receives domain counters. The HTTP layer backs it with Prometheus.
type Metrics interface {
	LeadsGenerated(kind entity.LeadKind, n int)
	MessageDispatched(channel entity.Channel, ok bool)
	PaymentProcessed(method entity.PaymentMethod, status entity.PaymentStatus)
}

type noopMetrics struct{}

func (noopMetrics) LeadsGenerated(entity.LeadKind, int) {}
func (noopMetrics) MessageDispatched(entity.Channel, bool) {}
func (noopMetrics) PaymentProcessed(entity.PaymentMethod, entity.PaymentStatus) {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
