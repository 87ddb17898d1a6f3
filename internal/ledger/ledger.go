// Package ledger owns the campaign state machine. All campaign mutations go
// through a Ledger so every transition is checked and persisted atomically.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type CreateCampaignInput struct {
	Type        entity.CampaignType `json:"type"`
	Audience    entity.Audience     `json:"audience"`
	Program     string              `json:"program"`
	Channel     entity.Channel      `json:"channel"`
	TargetCount int                 `json:"target_count"`
}

// TransitionError carries the campaign and both ends of a rejected transition.
type TransitionError struct {
	CampaignID string
	From       entity.CampaignStatus
	To         entity.CampaignStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("campaign %s: cannot go from %s to %s", e.CampaignID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return entity.ErrInvalidTransition }

// CorruptionError is the panic value raised when the stored ledger breaks an
// invariant. Callers must stop the process rather than recover from it.
type CorruptionError struct {
	CampaignID string
	Reason     string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("ledger corrupt: campaign %s: %s", e.CampaignID, e.Reason)
}

// Observer is notified after each persisted transition.
type Observer func(c *entity.Campaign, from entity.CampaignStatus)

type Ledger struct {
	repo     entity.CampaignRepositoryInterface
	programs entity.ProgramCatalog
	observer Observer

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func New(repo entity.CampaignRepositoryInterface, programs entity.ProgramCatalog) *Ledger {
	return &Ledger{
		repo:     repo,
		programs: programs,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// WithObserver registers a callback for persisted transitions.
func (l *Ledger) WithObserver(o Observer) *Ledger {
	l.observer = o
	return l
}

func (l *Ledger) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*entity.Campaign, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("unknown campaign type %q", in.Type)
	}
	if !in.Audience.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedAudience, in.Audience)
	}
	if !in.Channel.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedChannel, in.Channel)
	}
	if _, ok := l.programs.Program(in.Program); !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownProgram, in.Program)
	}
	if in.TargetCount < 0 {
		return nil, fmt.Errorf("target_count must be zero or positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c := &entity.Campaign{
		ID:          l.newID(),
		Type:        in.Type,
		Audience:    in.Audience,
		Program:     in.Program,
		Channel:     in.Channel,
		Status:      entity.CampaignDraft,
		TargetCount: in.TargetCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.create(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("📋 Campanha %s criada (%s/%s/%s)", c.ID, c.Channel, c.Audience, c.Program)
	return clone(c), nil
}

// Rerun copies a finished campaign's parameters into a fresh Draft. Terminal
// campaigns are never reopened, and live ones cannot be rerun.
func (l *Ledger) Rerun(ctx context.Context, id string) (*entity.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !src.Status.Terminal() {
		return nil, &TransitionError{CampaignID: id, From: src.Status, To: entity.CampaignDraft}
	}
	now := l.now()
	c := &entity.Campaign{
		ID:          l.newID(),
		Type:        src.Type,
		Audience:    src.Audience,
		Program:     src.Program,
		Channel:     src.Channel,
		Status:      entity.CampaignDraft,
		TargetCount: src.TargetCount,
		RerunOf:     src.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.create(ctx, c); err != nil {
		return nil, err
	}
	return clone(c), nil
}

func (l *Ledger) Schedule(ctx context.Context, id string, when time.Time) (*entity.Campaign, error) {
	return l.transition(ctx, id, entity.CampaignScheduled, func(c *entity.Campaign, now time.Time) {
		w := when
		c.ScheduledAt = &w
	})
}

// BeginDispatch moves a Draft or Scheduled campaign to Dispatching. When the
// campaign is already Dispatching it returns it unchanged with started=false
// so the caller does not send twice.
func (l *Ledger) BeginDispatch(ctx context.Context, id string) (c *entity.Campaign, started bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if cur.Status == entity.CampaignDispatching {
		return clone(cur), false, nil
	}
	next, err := l.apply(ctx, cur, entity.CampaignDispatching, func(c *entity.Campaign, now time.Time) {
		c.StartedAt = &now
	})
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

// RecordOutcome closes a dispatch. The campaign is Completed when nothing
// failed and Failed otherwise.
func (l *Ledger) RecordOutcome(ctx context.Context, id string, succeeded, failed int) (*entity.Campaign, error) {
	if succeeded < 0 || failed < 0 {
		return nil, fmt.Errorf("outcome counts must be zero or positive")
	}
	target := entity.CampaignCompleted
	if failed > 0 {
		target = entity.CampaignFailed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != entity.CampaignDispatching {
		return nil, &TransitionError{CampaignID: id, From: cur.Status, To: target}
	}
	return l.apply(ctx, cur, target, func(c *entity.Campaign, now time.Time) {
		c.Succeeded = succeeded
		c.Failed = failed
		c.CompletedAt = &now
	})
}

// CancelDispatch stops a campaign. A Dispatching campaign keeps the counts
// reached so far; a Draft or Scheduled one is cancelled with zero counts.
func (l *Ledger) CancelDispatch(ctx context.Context, id string, succeeded, failed int) (*entity.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dispatching := cur.Status == entity.CampaignDispatching
	return l.apply(ctx, cur, entity.CampaignCancelled, func(c *entity.Campaign, now time.Time) {
		if dispatching {
			c.Succeeded = succeeded
			c.Failed = failed
		}
		c.CompletedAt = &now
	})
}

// RequestCancel cancels a Draft or Scheduled campaign at once. A Dispatching
// campaign is only flagged: whoever runs the dispatch sees the flag between
// items and closes it with the counts it reached.
func (l *Ledger) RequestCancel(ctx context.Context, id string) (*entity.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != entity.CampaignDispatching {
		return l.apply(ctx, cur, entity.CampaignCancelled, func(c *entity.Campaign, now time.Time) {
			c.CompletedAt = &now
		})
	}
	if cur.CancelRequested {
		return clone(cur), nil
	}

	next := clone(cur)
	next.CancelRequested = true
	next.UpdatedAt = l.now()
	if err := l.repo.Update(ctx, next, entity.CampaignDispatching); err != nil {
		if errors.Is(err, entity.ErrStaleCampaign) {
			return nil, fmt.Errorf("%w: %v", &TransitionError{CampaignID: id, From: cur.Status, To: entity.CampaignCancelled}, err)
		}
		return nil, err
	}
	log.Printf("✋ Campanha %s: cancelamento solicitado durante o disparo", id)
	return next, nil
}

// CancelRequested reports whether a cancel is pending for a Dispatching campaign.
func (l *Ledger) CancelRequested(ctx context.Context, id string) (bool, error) {
	c, err := l.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return c.Status == entity.CampaignDispatching && c.CancelRequested, nil
}

func (l *Ledger) Get(ctx context.Context, id string) (*entity.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, id)
}

func (l *Ledger) List(ctx context.Context, filter entity.CampaignFilter) ([]*entity.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		mustValidStatus(c)
	}
	return list, nil
}

// DueForDispatch returns the Scheduled campaigns whose time has come.
func (l *Ledger) DueForDispatch(ctx context.Context, now time.Time) ([]*entity.Campaign, error) {
	scheduled, err := l.List(ctx, entity.CampaignFilter{Status: entity.CampaignScheduled})
	if err != nil {
		return nil, err
	}
	due := make([]*entity.Campaign, 0, len(scheduled))
	for _, c := range scheduled {
		if c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
			due = append(due, c)
		}
	}
	return due, nil
}

func (l *Ledger) transition(ctx context.Context, id string, to entity.CampaignStatus, mutate func(*entity.Campaign, time.Time)) (*entity.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.apply(ctx, cur, to, mutate)
}

// apply must be called with mu held.
func (l *Ledger) apply(ctx context.Context, cur *entity.Campaign, to entity.CampaignStatus, mutate func(*entity.Campaign, time.Time)) (*entity.Campaign, error) {
	from := cur.Status
	if !from.CanTransitionTo(to) {
		return nil, &TransitionError{CampaignID: cur.ID, From: from, To: to}
	}

	next := clone(cur)
	now := l.now()
	next.Status = to
	next.UpdatedAt = now
	if mutate != nil {
		mutate(next, now)
	}

	if err := l.repo.Update(ctx, next, from); err != nil {
		if errors.Is(err, entity.ErrStaleCampaign) {
			return nil, fmt.Errorf("%w: %v", &TransitionError{CampaignID: cur.ID, From: from, To: to}, err)
		}
		return nil, err
	}

	log.Printf("🔁 Campanha %s: %s -> %s", next.ID, from, to)
	if l.observer != nil {
		l.observer(clone(next), from)
	}
	return next, nil
}

func (l *Ledger) load(ctx context.Context, id string) (*entity.Campaign, error) {
	c, err := l.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mustValidStatus(c)
	return c, nil
}

func (l *Ledger) create(ctx context.Context, c *entity.Campaign) error {
	err := l.repo.Create(ctx, c)
	if errors.Is(err, entity.ErrDuplicateID) {
		panic(&CorruptionError{CampaignID: c.ID, Reason: "id collision"})
	}
	return err
}

// mustValidStatus halts on a status outside the enumerated set: the stored
// ledger is corrupt and continuing would hide it.
func mustValidStatus(c *entity.Campaign) {
	if !c.Status.Valid() {
		panic(&CorruptionError{CampaignID: c.ID, Reason: fmt.Sprintf("invalid status %q", c.Status)})
	}
}

func clone(c *entity.Campaign) *entity.Campaign {
	cp := *c
	cp.ScheduledAt = cloneTime(c.ScheduledAt)
	cp.StartedAt = cloneTime(c.StartedAt)
	cp.CompletedAt = cloneTime(c.CompletedAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
