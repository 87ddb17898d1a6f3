package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/jobs"
	"github.com/xavierca1/sitm-outreach/internal/leadgen"
)

const DefaultMaxSyncLeads = 5000

type GenerateLeadsInput struct {
	Count  int             `json:"count"`
	Kind   entity.LeadKind `json:"kind"`
	Source string          `json:"source"`
}

type GenerateLeadsOutput struct {
	Count int            `json:"count"`
	Leads []*entity.Lead `json:"leads"`
}

type GenerateLeadsUseCase struct {
	Generator *leadgen.Generator
	Repo      entity.LeadRepositoryInterface
	Runner    *jobs.Runner
	MaxSync   int
	Metrics   Metrics
}

func NewGenerateLeadsUseCase(
	generator *leadgen.Generator,
	repo entity.LeadRepositoryInterface,
	runner *jobs.Runner,
	maxSync int,
	metrics Metrics,
) *GenerateLeadsUseCase {
	if maxSync <= 0 {
		maxSync = DefaultMaxSyncLeads
	}
	return &GenerateLeadsUseCase{
		Generator: generator,
		Repo:      repo,
		Runner:    runner,
		MaxSync:   maxSync,
		Metrics:   metricsOrNoop(metrics),
	}
}

// Execute generates and stores a batch in the caller's goroutine. Batches
// above MaxSync must go through Start.
func (uc *GenerateLeadsUseCase) Execute(ctx context.Context, input GenerateLeadsInput) (*GenerateLeadsOutput, error) {
	if errs := ValidateGenerateLeadsInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	if input.Count > uc.MaxSync {
		return nil, &DomainError{
			Code:    CodeLimitExceeded,
			Message: fmt.Sprintf("count %d exceeds the synchronous limit of %d, use the async endpoint", input.Count, uc.MaxSync),
			Field:   "count",
			Err:     entity.ErrGenerationLimitExceeded,
		}
	}

	leads, err := uc.generate(ctx, input, nil)
	if err != nil {
		return nil, err
	}
	return &GenerateLeadsOutput{Count: len(leads), Leads: leads}, nil
}

// Start runs the generation as a background job and returns its id. A
// cancelled job stores nothing.
func (uc *GenerateLeadsUseCase) Start(ctx context.Context, input GenerateLeadsInput) (string, error) {
	if errs := ValidateGenerateLeadsInput(input); len(errs) > 0 {
		return "", validationFailed(errs)
	}

	id := uc.Runner.Start(ctx, "generate_leads", func(ctx context.Context, report jobs.Report) (string, error) {
		leads, err := uc.generate(ctx, input, leadgen.Progress(report))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d %s leads", len(leads), input.Kind), nil
	})
	log.Printf("🧵 Geração de %d leads %s iniciada (job %s)", input.Count, input.Kind, id)
	return id, nil
}

func (uc *GenerateLeadsUseCase) generate(ctx context.Context, input GenerateLeadsInput, progress leadgen.Progress) ([]*entity.Lead, error) {
	leads, err := uc.Generator.Generate(ctx, leadgen.Request{
		Count:  input.Count,
		Kind:   input.Kind,
		Source: input.Source,
	}, progress)
	if err != nil {
		if errors.Is(err, leadgen.ErrInvalidCount) {
			return nil, &DomainError{Code: CodeValidation, Message: err.Error(), Field: "count", Err: err}
		}
		return nil, classify(err, CodeInternal)
	}

	if err := uc.Repo.SaveBatch(ctx, leads); err != nil {
		return nil, &TechnicalError{
			Code:    CodeDatabase,
			Message: "failed to persist lead batch: " + err.Error(),
			Err:     err,
		}
	}

	uc.Metrics.LeadsGenerated(input.Kind, len(leads))
	log.Printf("✅ %d leads %s gerados", len(leads), input.Kind)
	return leads, nil
}
