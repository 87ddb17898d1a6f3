package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type CampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[string]*entity.Campaign
}

func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{campaigns: make(map[string]*entity.Campaign)}
}

func (r *CampaignRepository) Create(ctx context.Context, c *entity.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.campaigns[c.ID]; exists {
		return entity.ErrDuplicateID
	}
	r.campaigns[c.ID] = copyCampaign(c)
	return nil
}

func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*entity.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[id]
	if !ok {
		return nil, entity.ErrCampaignNotFound
	}
	return copyCampaign(c), nil
}

// List returns campaigns oldest first.
func (r *CampaignRepository) List(ctx context.Context, filter entity.CampaignFilter) ([]*entity.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		out = append(out, copyCampaign(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CampaignRepository) Update(ctx context.Context, c *entity.Campaign, expected entity.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.campaigns[c.ID]
	if !ok {
		return entity.ErrCampaignNotFound
	}
	if cur.Status != expected {
		return entity.ErrStaleCampaign
	}
	r.campaigns[c.ID] = copyCampaign(c)
	return nil
}

func copyCampaign(c *entity.Campaign) *entity.Campaign {
	cp := *c
	if c.ScheduledAt != nil {
		t := *c.ScheduledAt
		cp.ScheduledAt = &t
	}
	if c.StartedAt != nil {
		t := *c.StartedAt
		cp.StartedAt = &t
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
