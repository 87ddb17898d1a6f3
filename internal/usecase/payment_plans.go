package usecase

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type PaymentPlansInput struct {
	Program string          `json:"program,omitempty"`
	Price   decimal.Decimal `json:"price,omitempty"`
	// Plan is "full" or "installment". Only payment links use it.
	Plan string `json:"plan,omitempty"`
}

// PaymentPlansUseCase offers the house payment plans for a program and issues
// checkout links for them.
type PaymentPlansUseCase struct {
	Programs entity.ProgramCatalog
	Links    *billing.LinkBuilder
}

func NewPaymentPlansUseCase(programs entity.ProgramCatalog, links *billing.LinkBuilder) *PaymentPlansUseCase {
	return &PaymentPlansUseCase{Programs: programs, Links: links}
}

func (uc *PaymentPlansUseCase) Plans(ctx context.Context, input PaymentPlansInput) ([]entity.PaymentPlan, error) {
	price, err := programPrice(uc.Programs, input.Price, input.Program)
	if err != nil {
		return nil, err
	}
	plans, err := billing.PaymentPlans(price)
	if err != nil {
		return nil, planError(err)
	}
	return plans, nil
}

// Link returns the checkout link for the first charge of the chosen plan.
func (uc *PaymentPlansUseCase) Link(ctx context.Context, input PaymentPlansInput) (*entity.PaymentLink, error) {
	kind, err := billing.ParsePlanKind(input.Plan)
	if err != nil {
		return nil, planError(err)
	}
	price, err := programPrice(uc.Programs, input.Price, input.Program)
	if err != nil {
		return nil, err
	}
	plan, err := billing.PaymentPlanFor(price, kind)
	if err != nil {
		return nil, planError(err)
	}

	link := uc.Links.Link(plan, input.Program)
	log.Printf("🔗 Link de pagamento %s (%s, %s)", link.Reference, link.Plan, link.Amount.StringFixed(2))
	return &link, nil
}

// programPrice returns price unless it is zero and a program is named, in
// which case the catalog price is used.
func programPrice(programs entity.ProgramCatalog, price decimal.Decimal, program string) (decimal.Decimal, error) {
	if !price.IsZero() || program == "" {
		return price, nil
	}
	p, ok := programs.Program(program)
	if !ok {
		return decimal.Zero, &DomainError{
			Code:    CodeUnknownProgram,
			Message: "unknown program: " + program,
			Field:   "program",
			Err:     entity.ErrUnknownProgram,
		}
	}
	return p.Price, nil
}

func planError(err error) error {
	out := classify(err, CodeInternal)
	if de, ok := out.(*DomainError); ok {
		switch de.Code {
		case CodeInvalidAmount:
			de.Field = "price"
		case CodeValidation:
			de.Field = "plan"
		}
	}
	return out
}
