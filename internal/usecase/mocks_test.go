package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/content"
	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/infra/queue"
)

// MockNotificationDispatcher
type MockNotificationDispatcher struct {
	mock.Mock
	mu   sync.Mutex
	sent []entity.OutboundMessage
}

func (m *MockNotificationDispatcher) Send(ctx context.Context, msg entity.OutboundMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return m.Called(ctx, msg).Error(0)
}

func (m *MockNotificationDispatcher) Sent() []entity.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.OutboundMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// MockSocialPublisher
type MockSocialPublisher struct {
	mock.Mock
}

func (m *MockSocialPublisher) Publish(ctx context.Context, content, platform string) error {
	return m.Called(ctx, content, platform).Error(0)
}

// MockPaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Authorize(ctx context.Context, req billing.AuthorizationRequest) (billing.AuthorizationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(billing.AuthorizationResult), args.Error(1)
}

func (m *MockPaymentGateway) Void(ctx context.Context, transactionID string) error {
	return m.Called(ctx, transactionID).Error(0)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishDispatch(ctx context.Context, payload queue.DispatchPayload) error {
	return m.Called(ctx, payload).Error(0)
}

// MockPaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payment), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) SaveBatch(ctx context.Context, leads []*entity.Lead) error {
	return m.Called(ctx, leads).Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, from, to entity.LeadStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

type countingMetrics struct {
	mu       sync.Mutex
	leads    int
	ok       int
	failed   int
	payments map[entity.PaymentStatus]int
}

func (m *countingMetrics) LeadsGenerated(kind entity.LeadKind, n int) {
	m.mu.Lock()
	m.leads += n
	m.mu.Unlock()
}

func (m *countingMetrics) MessageDispatched(channel entity.Channel, ok bool) {
	m.mu.Lock()
	if ok {
		m.ok++
	} else {
		m.failed++
	}
	m.mu.Unlock()
}

func (m *countingMetrics) PaymentProcessed(method entity.PaymentMethod, status entity.PaymentStatus) {
	m.mu.Lock()
	if m.payments == nil {
		m.payments = make(map[entity.PaymentStatus]int)
	}
	m.payments[status]++
	m.mu.Unlock()
}

func newTestEngine(t *testing.T) *content.Engine {
	t.Helper()
	cat, err := content.DefaultCatalog()
	require.NoError(t, err)
	engine, err := content.NewEngine(cat, nil)
	require.NoError(t, err)
	return engine
}
