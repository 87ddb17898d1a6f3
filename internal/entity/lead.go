package entity

import (
	"context"
	"time"
)

type LeadKind string

const (
	LeadStudent          LeadKind = "Student"
	LeadCorporate        LeadKind = "Corporate"
	LeadGovernmentOffice LeadKind = "GovernmentOffice"
)

func (k LeadKind) Valid() bool {
	switch k {
	case LeadStudent, LeadCorporate, LeadGovernmentOffice:
		return true
	}
	return false
}

type LeadStatus string

const (
	LeadNew       LeadStatus = "New"
	LeadPending   LeadStatus = "Pending" // estado inicial dos órgãos de governo
	LeadContacted LeadStatus = "Contacted"
	LeadQualified LeadStatus = "Qualified"
	LeadConverted LeadStatus = "Converted"
	LeadDeclined  LeadStatus = "Declined"
)

var leadStatusRank = map[LeadStatus]int{
	LeadNew:       0,
	LeadPending:   0,
	LeadContacted: 1,
	LeadQualified: 2,
	LeadConverted: 3,
	LeadDeclined:  3,
}

func (s LeadStatus) Valid() bool {
	_, ok := leadStatusRank[s]
	return ok
}

// Terminal reports whether no further transition is allowed.
func (s LeadStatus) Terminal() bool {
	return s == LeadConverted || s == LeadDeclined
}

// CanTransitionTo enforces monotonic progress: a lead only moves forward.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	return leadStatusRank[next] > leadStatusRank[s]
}

// Lead é um contato de prospecção. Os campos preenchidos dependem de Kind.
type Lead struct {
	ID     string     `json:"id"`
	Kind   LeadKind   `json:"kind"`
	Status LeadStatus `json:"status"`
	Source string     `json:"source"`

	Name        string `json:"name,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`

	// Student
	Location string `json:"location,omitempty"`
	Country  string `json:"country,omitempty"`
	Interest string `json:"interest,omitempty"`

	// Corporate
	Company       string `json:"company,omitempty"`
	EmployeeCount int    `json:"employee_count,omitempty"`
	BudgetCents   int64  `json:"budget_cents,omitempty"`
	Needs         string `json:"needs,omitempty"`

	// GovernmentOffice
	Jurisdiction     string  `json:"jurisdiction,omitempty"`
	Office           string  `json:"office,omitempty"`
	UnemploymentRate float64 `json:"unemployment_rate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the person to greet, whatever the lead kind.
func (l *Lead) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ContactName
}

type LeadFilter struct {
	Kind   LeadKind
	Source string
	Limit  int
	Offset int
}

type LeadRepositoryInterface interface {
	// SaveBatch persists every lead or none of them.
	SaveBatch(ctx context.Context, leads []*Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id string, from, to LeadStatus) error
}
