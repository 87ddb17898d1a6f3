// Package jobs runs long generation and dispatch work in the background with
// cooperative cancellation and pollable progress.
package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

// Report publishes how many items of total are done.
type Report func(done, total int)

// Task is the unit of background work. The returned string is kept as the
// job result (a campaign id, a batch summary).
type Task func(ctx context.Context, report Report) (string, error)

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Runner struct {
	store entity.JobStoreInterface

	mu      sync.Mutex
	handles map[string]*handle
	now     func() time.Time
}

func NewRunner(store entity.JobStoreInterface) *Runner {
	return &Runner{
		store:   store,
		handles: make(map[string]*handle),
		now:     time.Now,
	}
}

// Start launches task in its own goroutine and returns the job id. The task
// context is detached from ctx deadlines so it outlives the request that
// started it; use Cancel to stop it.
func (r *Runner) Start(ctx context.Context, kind string, task Task) string {
	id := uuid.New().String()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &handle{cancel: cancel, done: make(chan struct{})}

	job := entity.Job{ID: id, Kind: kind, State: entity.JobRunning, StartedAt: r.now()}
	r.save(ctx, job)

	r.mu.Lock()
	r.handles[id] = h
	r.mu.Unlock()

	go r.run(runCtx, h, job, task)
	return id
}

func (r *Runner) run(ctx context.Context, h *handle, job entity.Job, task Task) {
	defer close(h.done)
	defer h.cancel()

	var mu sync.Mutex
	report := func(done, total int) {
		mu.Lock()
		job.Done, job.Total = done, total
		snapshot := job
		mu.Unlock()
		r.save(ctx, snapshot)
	}

	result, err := task(ctx, report)

	mu.Lock()
	finished := r.now()
	job.FinishedAt = &finished
	job.Result = result
	switch {
	case err == nil:
		job.State = entity.JobSucceeded
	case errors.Is(err, context.Canceled):
		job.State = entity.JobCancelled
		job.Error = err.Error()
	default:
		job.State = entity.JobFailed
		job.Error = err.Error()
	}
	snapshot := job
	mu.Unlock()

	// the final snapshot is written even though ctx may already be cancelled
	r.save(context.WithoutCancel(ctx), snapshot)

	if snapshot.State == entity.JobFailed {
		log.Printf("❌ Job %s (%s) falhou: %s", snapshot.ID, snapshot.Kind, snapshot.Error)
	} else {
		log.Printf("✅ Job %s (%s) finalizado: %s (%d/%d)", snapshot.ID, snapshot.Kind, snapshot.State, snapshot.Done, snapshot.Total)
	}

	r.mu.Lock()
	delete(r.handles, snapshot.ID)
	r.mu.Unlock()
}

func (r *Runner) Get(ctx context.Context, id string) (*entity.Job, error) {
	return r.store.Get(ctx, id)
}

// Cancel asks a running job to stop. It returns ErrJobNotFound when the job
// is unknown or already finished on this instance.
func (r *Runner) Cancel(id string) error {
	r.mu.Lock()
	h, ok := r.handles[id]
	r.mu.Unlock()
	if !ok {
		return entity.ErrJobNotFound
	}
	h.cancel()
	return nil
}

// Wait blocks until the job finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context, id string) (*entity.Job, error) {
	r.mu.Lock()
	h, ok := r.handles[id]
	r.mu.Unlock()
	if ok {
		select {
		case <-h.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.store.Get(ctx, id)
}

// Shutdown cancels every running job and waits for them to stop.
func (r *Runner) Shutdown(ctx context.Context) {
	r.mu.Lock()
	handles := make([]*handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}
	for _, h := range handles {
		select {
		case <-h.done:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) save(ctx context.Context, job entity.Job) {
	if err := r.store.Save(ctx, job); err != nil {
		log.Printf("⚠️ Falha ao salvar progresso do job %s: %v", job.ID, err)
	}
}
