package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

const maxListLimit = 1000

type UpdateLeadStatusInput struct {
	LeadID string            `json:"lead_id"`
	Status entity.LeadStatus `json:"status"`
}

// UpdateLeadStatusUseCase moves a lead forward through its funnel. Leads
// never regress and terminal statuses are final.
type UpdateLeadStatusUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewUpdateLeadStatusUseCase(repo entity.LeadRepositoryInterface) *UpdateLeadStatusUseCase {
	return &UpdateLeadStatusUseCase{Repo: repo}
}

func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, input UpdateLeadStatusInput) (*entity.Lead, error) {
	if !input.Status.Valid() {
		return nil, validationFailed([]ValidationError{{"status", "must be a known lead status"}})
	}

	lead, err := uc.Repo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}
	if !lead.Status.CanTransitionTo(input.Status) {
		return nil, &DomainError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("lead %s cannot go from %s to %s", lead.ID, lead.Status, input.Status),
			Field:   "status",
			Err:     entity.ErrInvalidTransition,
		}
	}

	if err := uc.Repo.UpdateStatus(ctx, lead.ID, lead.Status, input.Status); err != nil {
		return nil, classify(err, CodeDatabase)
	}
	lead.Status = input.Status
	return lead, nil
}

type ListLeadsUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewListLeadsUseCase(repo entity.LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Repo: repo}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, validationFailed([]ValidationError{{"kind", "must be Student, Corporate or GovernmentOffice"}})
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	leads, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}
	return leads, nil
}

// markContacted advances a freshly reached lead. Failures are logged by the
// caller and never stop a dispatch.
func markContacted(ctx context.Context, repo entity.LeadRepositoryInterface, lead *entity.Lead) error {
	if lead.Status != entity.LeadNew && lead.Status != entity.LeadPending {
		return nil
	}
	err := repo.UpdateStatus(ctx, lead.ID, lead.Status, entity.LeadContacted)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil
	}
	return err
}
