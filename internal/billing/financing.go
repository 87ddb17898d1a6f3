// Package billing quotes financing plans and simulates payment authorization.
package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type planTerms struct {
	provider entity.FinancingProvider
	months   int
	term     string
	apr      decimal.Decimal
}

var financingTerms = []planTerms{
	{entity.ProviderAffirm, 12, "12 months", decimal.RequireFromString("0.10")},
	{entity.ProviderKlarna, 6, "6 months", decimal.RequireFromString("0.08")},
	{entity.ProviderCountySponsorship, 0, "Full grant", decimal.Zero},
}

// ParseProvider accepts provider names ignoring case and spaces, so both
// "CountySponsorship" and "county sponsorship" resolve.
func ParseProvider(name string) (entity.FinancingProvider, error) {
	want := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	for _, t := range financingTerms {
		if strings.ToLower(string(t.provider)) == want {
			return t.provider, nil
		}
	}
	return "", fmt.Errorf("%w: %q", entity.ErrUnsupportedProvider, name)
}

// QuoteFinancing splits principal into equal monthly installments. The APR is
// informational and is not compounded into the monthly figure.
func QuoteFinancing(principal decimal.Decimal, provider string) (entity.FinancingPlan, error) {
	if !principal.IsPositive() {
		return entity.FinancingPlan{}, entity.ErrInvalidAmount
	}
	p, err := ParseProvider(provider)
	if err != nil {
		return entity.FinancingPlan{}, err
	}
	for _, t := range financingTerms {
		if t.provider == p {
			return quote(principal, t), nil
		}
	}
	return entity.FinancingPlan{}, fmt.Errorf("%w: %q", entity.ErrUnsupportedProvider, provider)
}

// FinancingOptions quotes every supported provider, in display order.
func FinancingOptions(principal decimal.Decimal) ([]entity.FinancingPlan, error) {
	if !principal.IsPositive() {
		return nil, entity.ErrInvalidAmount
	}
	plans := make([]entity.FinancingPlan, 0, len(financingTerms))
	for _, t := range financingTerms {
		plans = append(plans, quote(principal, t))
	}
	return plans, nil
}

func quote(principal decimal.Decimal, t planTerms) entity.FinancingPlan {
	monthly := decimal.Zero
	if t.months > 0 {
		monthly = principal.Div(decimal.NewFromInt(int64(t.months))).Round(2)
	}
	return entity.FinancingPlan{
		Provider:      t.provider,
		MonthlyAmount: monthly,
		TermMonths:    t.months,
		Term:          t.term,
		APR:           t.apr,
	}
}
