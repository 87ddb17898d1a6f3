// Package memstore keeps leads, campaigns and payments in process memory.
// It backs the session when no DATABASE_URL is configured.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
	order []string
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{leads: make(map[string]*entity.Lead)}
}

// SaveBatch stores every lead or, when any id is already taken, none.
func (r *LeadRepository) SaveBatch(ctx context.Context, leads []*entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range leads {
		if _, exists := r.leads[l.ID]; exists {
			return fmt.Errorf("lead %s: %w", l.ID, entity.ErrDuplicateID)
		}
	}
	for _, l := range leads {
		cp := *l
		r.leads[l.ID] = &cp
		r.order = append(r.order, l.ID)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

// List returns leads in insertion order.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Lead, 0)
	skipped := 0
	for _, id := range r.order {
		l := r.leads[id]
		if filter.Kind != "" && l.Kind != filter.Kind {
			continue
		}
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		cp := *l
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, from, to entity.LeadStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if l.Status != from {
		return fmt.Errorf("lead %s is %s, expected %s: %w", id, l.Status, from, entity.ErrInvalidTransition)
	}
	l.Status = to
	l.UpdatedAt = time.Now()
	return nil
}
