package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/ledger"
)

type CreateCampaignInput = ledger.CreateCampaignInput

type RecordOutcomeInput struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// CampaignUseCase exposes the ledger operations to the presentation layer and
// translates ledger errors into DomainError values.
type CampaignUseCase struct {
	Ledger   *ledger.Ledger
	Dispatch *DispatchCampaignUseCase
}

func NewCampaignUseCase(l *ledger.Ledger, dispatch *DispatchCampaignUseCase) *CampaignUseCase {
	return &CampaignUseCase{Ledger: l, Dispatch: dispatch}
}

func (uc *CampaignUseCase) Create(ctx context.Context, input CreateCampaignInput) (*entity.Campaign, error) {
	if errs := ValidateCreateCampaignInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	c, err := uc.Ledger.CreateCampaign(ctx, input)
	if err != nil {
		return nil, withField(classify(err, CodeDatabase), "program")
	}
	return c, nil
}

func (uc *CampaignUseCase) Schedule(ctx context.Context, id string, when time.Time) (*entity.Campaign, error) {
	if when.IsZero() {
		return nil, validationFailed([]ValidationError{{"scheduled_at", "is required"}})
	}
	c, err := uc.Ledger.Schedule(ctx, id, when)
	return c, classify(err, CodeDatabase)
}

func (uc *CampaignUseCase) RecordOutcome(ctx context.Context, id string, input RecordOutcomeInput) (*entity.Campaign, error) {
	if input.Succeeded < 0 || input.Failed < 0 {
		return nil, validationFailed([]ValidationError{{"succeeded", "counts must be zero or positive"}})
	}
	c, err := uc.Ledger.RecordOutcome(ctx, id, input.Succeeded, input.Failed)
	return c, classify(err, CodeDatabase)
}

// Cancel stops a dispatch running in this process and waits for it to record
// its partial counts. A dispatch owned by a queue worker or another instance
// is only flagged; that dispatcher closes the campaign itself. A campaign that
// has not started is cancelled at once.
func (uc *CampaignUseCase) Cancel(ctx context.Context, id string) (*entity.Campaign, error) {
	if uc.Dispatch != nil {
		if jobID, ok := uc.Dispatch.Stop(id); ok {
			if _, err := uc.Dispatch.Runner.Wait(ctx, jobID); err != nil {
				return nil, err
			}
			return uc.Get(ctx, id)
		}
	}
	c, err := uc.Ledger.RequestCancel(ctx, id)
	return c, classify(err, CodeDatabase)
}

func (uc *CampaignUseCase) Rerun(ctx context.Context, id string) (*entity.Campaign, error) {
	c, err := uc.Ledger.Rerun(ctx, id)
	return c, classify(err, CodeDatabase)
}

func (uc *CampaignUseCase) Get(ctx context.Context, id string) (*entity.Campaign, error) {
	c, err := uc.Ledger.Get(ctx, id)
	return c, classify(err, CodeDatabase)
}

func (uc *CampaignUseCase) List(ctx context.Context, filter entity.CampaignFilter) ([]*entity.Campaign, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationFailed([]ValidationError{{"status", "must be a known campaign status"}})
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, validationFailed([]ValidationError{{"type", "must be email, social, sms or payment"}})
	}
	list, err := uc.Ledger.List(ctx, filter)
	return list, classify(err, CodeDatabase)
}

func withField(err error, field string) error {
	if de, ok := err.(*DomainError); ok && de.Field == "" && de.Code == CodeUnknownProgram {
		de.Field = field
	}
	return err
}
