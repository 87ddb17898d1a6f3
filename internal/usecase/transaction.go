package usecase

import (
	"context"
	"fmt"
	"log"
)

// Transaction runs operations in order. When one fails, the compensations
// registered for the operations that already ran are executed in reverse.
type Transaction struct {
	steps []step
}

type step struct {
	name       string
	fn         func(context.Context) error
	compensate func(context.Context) error
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, fn: fn})
}

// AddCompensation attaches an undo function to the last added operation.
func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	if len(t.steps) == 0 {
		panic("transaction: compensation " + name + " added before any operation")
	}
	t.steps[len(t.steps)-1].compensate = fn
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", s.name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	// compensations must run even if the caller's context is already done
	ctx = context.WithoutCancel(ctx)
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.compensate == nil {
			continue
		}
		if err := s.compensate(ctx); err != nil {
			log.Printf("⚠️ WARNING: Compensation for '%s' failed: %v (inconsistency risk!)", s.name, err)
		}
	}
}
