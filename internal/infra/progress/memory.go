// Package progress stores background job snapshots so they can be polled.
package progress

import (
	"context"
	"sync"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]entity.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]entity.Job)}
}

func (s *MemoryStore) Save(ctx context.Context, job entity.Job) error {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*entity.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	return &job, nil
}
