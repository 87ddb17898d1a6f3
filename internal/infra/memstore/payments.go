package memstore

import (
	"context"
	"sync"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]entity.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]entity.Payment)}
}

func (r *PaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.TransactionID]; exists {
		return entity.ErrDuplicateID
	}
	r.payments[p.TransactionID] = *p
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[transactionID]
	if !ok {
		return nil, entity.ErrPaymentNotFound
	}
	return &p, nil
}
