// Package leadgen produces batches of synthetic leads. Generation runs in
// chunks so long batches can be cancelled and report progress between them.
package leadgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/identity"
)

const DefaultChunkSize = 1000

var ErrInvalidCount = errors.New("count must be zero or positive")

// ErrTooManyJurisdictions is returned when more government leads are asked
// for than there are jurisdictions.
var ErrTooManyJurisdictions = errors.New("count exceeds the number of jurisdictions")

// Jurisdictions contacted for government-funded training.
var Jurisdictions = []string{"Fulton", "Gwinnett", "Cobb", "DeKalb", "Broward", "Harris"}

var (
	studentSources = []string{"LinkedIn", "University", "Meetup"}
	corporateNeeds = []string{"Training", "Consulting", "Recruiting"}
)

// Progress is called after each chunk with the number of leads produced so far.
type Progress func(done, total int)

type Request struct {
	Count  int
	Kind   entity.LeadKind
	Source string
}

type Generator struct {
	ids       *identity.Provider
	catalog   entity.ProgramCatalog
	chunkSize int
	now       func() time.Time
	newID     func() string
}

func NewGenerator(ids *identity.Provider, catalog entity.ProgramCatalog, chunkSize int) *Generator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Generator{
		ids:       ids,
		catalog:   catalog,
		chunkSize: chunkSize,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Generate returns exactly req.Count leads in generation order, or an error.
// Government offices are one per jurisdiction, so a larger count fails with
// ErrTooManyJurisdictions. When ctx is cancelled between chunks it returns
// what was produced so far together with ctx.Err().
func (g *Generator) Generate(ctx context.Context, req Request, progress Progress) ([]*entity.Lead, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown lead kind %q", req.Kind)
	}
	if req.Count < 0 {
		return nil, ErrInvalidCount
	}
	if req.Kind == entity.LeadGovernmentOffice && req.Count > len(Jurisdictions) {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyJurisdictions, req.Count, len(Jurisdictions))
	}

	total := req.Count

	leads := make([]*entity.Lead, 0, total)
	seen := make(map[string]struct{}, total)
	now := g.now()

	for len(leads) < total {
		if err := ctx.Err(); err != nil {
			return leads, err
		}
		end := len(leads) + g.chunkSize
		if end > total {
			end = total
		}
		for i := len(leads); i < end; i++ {
			lead := g.build(req, i, now)
			if _, dup := seen[lead.ID]; dup {
				panic(fmt.Sprintf("leadgen: duplicate lead id %s", lead.ID))
			}
			seen[lead.ID] = struct{}{}
			leads = append(leads, lead)
		}
		if progress != nil {
			progress(len(leads), total)
		}
	}

	return leads, nil
}

func (g *Generator) build(req Request, index int, now time.Time) *entity.Lead {
	lead := &entity.Lead{
		ID:        g.newID(),
		Kind:      req.Kind,
		Status:    entity.LeadNew,
		Phone:     g.ids.Phone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch req.Kind {
	case entity.LeadStudent:
		lead.Name = g.ids.Name()
		lead.Email = g.ids.Email(lead.Name)
		lead.Location = g.ids.City()
		lead.Country = g.ids.Country()
		lead.Source = g.studentSource(req.Source)
		lead.Interest = g.ids.Pick(g.catalog.ProgramKeys())

	case entity.LeadCorporate:
		lead.Company = g.ids.Company()
		lead.ContactName = g.ids.Name()
		lead.Email = g.ids.Email(lead.ContactName)
		lead.EmployeeCount = g.ids.IntRange(50, 5000)
		lead.BudgetCents = int64(g.ids.IntRange(5000, 50000)) * 100
		lead.Needs = g.ids.Pick(corporateNeeds)
		lead.Source = req.Source
		if lead.Source == "" {
			lead.Source = "LinkedIn"
		}

	case entity.LeadGovernmentOffice:
		county := Jurisdictions[index]
		lead.Jurisdiction = county
		lead.Office = county + " County Unemployment Office"
		lead.ContactName = g.ids.Name()
		lead.Email = "contact@" + strings.ToLower(strings.ReplaceAll(lead.Office, " ", "")) + ".gov"
		lead.UnemploymentRate = float64(g.ids.IntRange(35, 92)) / 10
		lead.Status = entity.LeadPending
		lead.Source = req.Source
		if lead.Source == "" {
			lead.Source = "County Outreach"
		}
	}

	return lead
}

// studentSource expands "University" into "University:<name>" and draws a
// source when none was given.
func (g *Generator) studentSource(tag string) string {
	if tag == "" {
		tag = g.ids.Pick(studentSources)
	}
	if tag == "University" {
		return "University:" + g.ids.University()
	}
	return tag
}
