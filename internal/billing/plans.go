package billing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

const (
	InstallmentMonths = 3
	// DefaultCheckoutURL is the checkout page payment links point to.
	DefaultCheckoutURL = "https://payment.example.com/checkout"
)

// InstallmentFollowOn is charged in every month after the first.
var InstallmentFollowOn = decimal.NewFromInt(1000)

// ParsePlanKind accepts "full" and "installment" in any case.
func ParsePlanKind(name string) (entity.PaymentPlanKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "full":
		return entity.PlanFull, nil
	case "installment", "installments":
		return entity.PlanInstallment, nil
	}
	return "", fmt.Errorf("%w: %q", entity.ErrUnsupportedPlan, name)
}

// PaymentPlans lists the full payment and the three month installment plan
// for price, in display order.
func PaymentPlans(price decimal.Decimal) ([]entity.PaymentPlan, error) {
	if !price.IsPositive() {
		return nil, entity.ErrInvalidAmount
	}
	return []entity.PaymentPlan{fullPlan(price), installmentPlan(price)}, nil
}

func PaymentPlanFor(price decimal.Decimal, kind entity.PaymentPlanKind) (entity.PaymentPlan, error) {
	if !price.IsPositive() {
		return entity.PaymentPlan{}, entity.ErrInvalidAmount
	}
	switch kind {
	case entity.PlanFull:
		return fullPlan(price), nil
	case entity.PlanInstallment:
		return installmentPlan(price), nil
	}
	return entity.PaymentPlan{}, fmt.Errorf("%w: %q", entity.ErrUnsupportedPlan, kind)
}

func fullPlan(price decimal.Decimal) entity.PaymentPlan {
	price = price.Round(2)
	return entity.PaymentPlan{
		Kind:     entity.PlanFull,
		Total:    price,
		Schedule: []entity.Installment{{Month: 1, Amount: price}},
	}
}

// installmentPlan charges InstallmentFollowOn in months 2 and 3 and the rest
// up front: 3500 becomes 1500, 1000, 1000. A price too small to cover a first
// month of at least InstallmentFollowOn is split evenly, with the rounding
// remainder on month 1. The schedule always sums to the price.
func installmentPlan(price decimal.Decimal) entity.PaymentPlan {
	price = price.Round(2)
	rest := decimal.NewFromInt(InstallmentMonths - 1)
	first := price.Sub(InstallmentFollowOn.Mul(rest))
	followOn := InstallmentFollowOn
	if first.LessThan(InstallmentFollowOn) {
		followOn = price.Div(decimal.NewFromInt(InstallmentMonths)).RoundDown(2)
		first = price.Sub(followOn.Mul(rest))
	}

	schedule := make([]entity.Installment, 0, InstallmentMonths)
	schedule = append(schedule, entity.Installment{Month: 1, Amount: first})
	for m := 2; m <= InstallmentMonths; m++ {
		schedule = append(schedule, entity.Installment{Month: m, Amount: followOn})
	}
	return entity.PaymentPlan{Kind: entity.PlanInstallment, Total: price, Schedule: schedule}
}

// LinkBuilder issues checkout links. Each link carries a fresh reference so
// the checkout page can tell repeated requests apart.
type LinkBuilder struct {
	base  *url.URL
	newID func() string
}

func NewLinkBuilder(checkoutURL string) (*LinkBuilder, error) {
	if checkoutURL == "" {
		checkoutURL = DefaultCheckoutURL
	}
	u, err := url.Parse(checkoutURL)
	if err != nil {
		return nil, fmt.Errorf("invalid checkout url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid checkout url %q: scheme and host are required", checkoutURL)
	}
	return &LinkBuilder{base: u, newID: uuid.NewString}, nil
}

// Link returns the checkout link for the first charge of plan. Installment
// links add plan=installment.
func (b *LinkBuilder) Link(plan entity.PaymentPlan, program string) entity.PaymentLink {
	ref := b.newID()
	amount := plan.DueNow()

	u := *b.base
	q := u.Query()
	q.Set("amount", amount.String())
	if plan.Kind == entity.PlanInstallment {
		q.Set("plan", "installment")
	}
	if program != "" {
		q.Set("program", program)
	}
	q.Set("ref", ref)
	u.RawQuery = q.Encode()

	return entity.PaymentLink{
		Reference: ref,
		URL:       u.String(),
		Plan:      plan.Kind,
		Program:   program,
		Amount:    amount,
	}
}
