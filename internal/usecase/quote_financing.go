package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type QuoteFinancingInput struct {
	Principal decimal.Decimal `json:"principal"`
	Provider  string          `json:"provider"`
	// Program fills Principal with the program price when Principal is zero.
	Program string `json:"program,omitempty"`
}

type QuoteFinancingUseCase struct {
	Programs entity.ProgramCatalog
}

func NewQuoteFinancingUseCase(programs entity.ProgramCatalog) *QuoteFinancingUseCase {
	return &QuoteFinancingUseCase{Programs: programs}
}

func (uc *QuoteFinancingUseCase) Execute(ctx context.Context, input QuoteFinancingInput) (*entity.FinancingPlan, error) {
	principal, err := uc.principal(input)
	if err != nil {
		return nil, err
	}
	plan, err := billing.QuoteFinancing(principal, input.Provider)
	if err != nil {
		return nil, uc.fail(err)
	}
	return &plan, nil
}

// Options quotes every provider for the same principal.
func (uc *QuoteFinancingUseCase) Options(ctx context.Context, input QuoteFinancingInput) ([]entity.FinancingPlan, error) {
	principal, err := uc.principal(input)
	if err != nil {
		return nil, err
	}
	plans, err := billing.FinancingOptions(principal)
	if err != nil {
		return nil, uc.fail(err)
	}
	return plans, nil
}

func (uc *QuoteFinancingUseCase) principal(input QuoteFinancingInput) (decimal.Decimal, error) {
	return programPrice(uc.Programs, input.Principal, input.Program)
}

func (uc *QuoteFinancingUseCase) fail(err error) error {
	out := classify(err, CodeInternal)
	if de, ok := out.(*DomainError); ok {
		switch de.Code {
		case CodeInvalidAmount:
			de.Field = "principal"
		case CodeUnsupported:
			de.Field = "provider"
		}
	}
	return out
}
