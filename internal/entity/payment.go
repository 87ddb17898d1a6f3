package entity

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCreditCard        PaymentMethod = "Credit Card"
	MethodAffirm            PaymentMethod = "Affirm"
	MethodKlarna            PaymentMethod = "Klarna"
	MethodBankTransfer      PaymentMethod = "Bank Transfer"
	MethodCountySponsorship PaymentMethod = "County Sponsorship"
)

var PaymentMethods = []PaymentMethod{
	MethodCreditCard, MethodAffirm, MethodKlarna, MethodBankTransfer, MethodCountySponsorship,
}

// ParsePaymentMethod accepts the display name ignoring case and spaces
// ("credit card", "CreditCard", "County Sponsorship").
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	want := normalizeName(s)
	for _, m := range PaymentMethods {
		if normalizeName(string(m)) == want {
			return m, true
		}
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "Approved"
	PaymentDeclined PaymentStatus = "Declined"
)

// Payment é imutável depois de criado.
type Payment struct {
	TransactionID string        `json:"transaction_id"`
	PayerName     string        `json:"payer_name"`
	PayerEmail    string        `json:"payer_email"`
	Program       string        `json:"program,omitempty"`
	AmountCents   int64         `json:"amount_cents"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Amount returns the amount in currency units.
func (p *Payment) Amount() decimal.Decimal {
	return decimal.New(p.AmountCents, -2)
}

type PaymentRepositoryInterface interface {
	// Create fails with ErrDuplicateID when the transaction id already exists.
	Create(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, transactionID string) (*Payment, error)
}

type FinancingProvider string

const (
	ProviderAffirm            FinancingProvider = "Affirm"
	ProviderKlarna            FinancingProvider = "Klarna"
	ProviderCountySponsorship FinancingProvider = "CountySponsorship"
)

// FinancingPlan is derived on demand and never persisted.
type FinancingPlan struct {
	Provider      FinancingProvider `json:"provider"`
	MonthlyAmount decimal.Decimal   `json:"monthly_amount"`
	TermMonths    int               `json:"term_months"`
	Term          string            `json:"term"`
	APR           decimal.Decimal   `json:"apr"`
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

type PaymentPlanKind string

const (
	PlanFull        PaymentPlanKind = "Full"
	PlanInstallment PaymentPlanKind = "Installment"
)

type Installment struct {
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentPlan is the house payment schedule for a program price. Like
// FinancingPlan it is derived on demand.
type PaymentPlan struct {
	Kind     PaymentPlanKind `json:"kind"`
	Total    decimal.Decimal `json:"total"`
	Schedule []Installment   `json:"schedule"`
}

// DueNow is the amount charged when the plan starts.
func (p PaymentPlan) DueNow() decimal.Decimal {
	if len(p.Schedule) == 0 {
		return p.Total
	}
	return p.Schedule[0].Amount
}

// PaymentLink points the payer at the checkout page for the first charge of a
// plan.
type PaymentLink struct {
	Reference string          `json:"reference"`
	URL       string          `json:"url"`
	Plan      PaymentPlanKind `json:"plan"`
	Program   string          `json:"program,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}
