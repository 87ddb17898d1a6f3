package leadgen

import (
	"context"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/identity"
)

type staticCatalog []string

func (c staticCatalog) Program(key string) (entity.Program, bool) {
	for _, k := range c {
		if k == key {
			return entity.Program{Key: k, Name: k}, true
		}
	}
	return entity.Program{}, false
}

func (c staticCatalog) ProgramKeys() []string { return c }

func newTestGenerator(chunk int) *Generator {
	return NewGenerator(identity.NewSeeded(11), staticCatalog{"AWS", "Database", "DevOps"}, chunk)
}

func TestGenerateCountsAndUniqueIDs(t *testing.T) {
	g := newTestGenerator(100)

	for _, kind := range []entity.LeadKind{entity.LeadStudent, entity.LeadCorporate} {
		for _, n := range []int{0, 1, 99, 100, 101, 2500} {
			leads, err := g.Generate(context.Background(), Request{Count: n, Kind: kind}, nil)
			require.NoError(t, err)
			require.Len(t, leads, n)

			ids := make(map[string]bool, n)
			for _, l := range leads {
				require.NotEmpty(t, l.ID)
				require.False(t, ids[l.ID], "duplicate id %s", l.ID)
				ids[l.ID] = true
			}
		}
	}
}

func TestGenerateZeroIsEmptyNotNil(t *testing.T) {
	leads, err := newTestGenerator(10).Generate(context.Background(), Request{Count: 0, Kind: entity.LeadStudent}, nil)

	require.NoError(t, err)
	assert.NotNil(t, leads)
	assert.Empty(t, leads)
}

func TestGenerateNegativeCount(t *testing.T) {
	_, err := newTestGenerator(10).Generate(context.Background(), Request{Count: -1, Kind: entity.LeadStudent}, nil)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestGenerateUnknownKind(t *testing.T) {
	_, err := newTestGenerator(10).Generate(context.Background(), Request{Count: 1, Kind: "Alumni"}, nil)
	assert.Error(t, err)
}

func TestStudentLeadShape(t *testing.T) {
	leads, err := newTestGenerator(50).Generate(context.Background(), Request{Count: 300, Kind: entity.LeadStudent}, nil)
	require.NoError(t, err)

	programs := map[string]bool{"AWS": true, "Database": true, "DevOps": true}
	for _, l := range leads {
		assert.Equal(t, entity.LeadStudent, l.Kind)
		assert.Equal(t, entity.LeadNew, l.Status)
		assert.NotEmpty(t, l.Name)
		assert.NotEmpty(t, l.Phone)
		assert.NotEmpty(t, l.Location)
		assert.NotEmpty(t, l.Country)
		assert.True(t, programs[l.Interest], l.Interest)
		_, err := mail.ParseAddress(l.Email)
		assert.NoError(t, err)
		assert.True(t, l.Source == "LinkedIn" || l.Source == "Meetup" || strings.HasPrefix(l.Source, "University:"), l.Source)
	}
}

func TestStudentSourceTag(t *testing.T) {
	g := newTestGenerator(10)

	leads, err := g.Generate(context.Background(), Request{Count: 5, Kind: entity.LeadStudent, Source: "University"}, nil)
	require.NoError(t, err)
	for _, l := range leads {
		assert.True(t, strings.HasPrefix(l.Source, "University:"))
	}

	leads, err = g.Generate(context.Background(), Request{Count: 5, Kind: entity.LeadStudent, Source: "Meetup"}, nil)
	require.NoError(t, err)
	for _, l := range leads {
		assert.Equal(t, "Meetup", l.Source)
	}
}

func TestCorporateLeadShape(t *testing.T) {
	leads, err := newTestGenerator(50).Generate(context.Background(), Request{Count: 200, Kind: entity.LeadCorporate}, nil)
	require.NoError(t, err)

	for _, l := range leads {
		assert.NotEmpty(t, l.Company)
		assert.NotEmpty(t, l.ContactName)
		assert.GreaterOrEqual(t, l.EmployeeCount, 50)
		assert.LessOrEqual(t, l.EmployeeCount, 5000)
		assert.GreaterOrEqual(t, l.BudgetCents, int64(500000))
		assert.LessOrEqual(t, l.BudgetCents, int64(5000000))
		assert.Contains(t, []string{"Training", "Consulting", "Recruiting"}, l.Needs)
		assert.Equal(t, entity.LeadNew, l.Status)
	}
}

func TestGovernmentLeadsAreFixedSet(t *testing.T) {
	g := newTestGenerator(2)

	leads, err := g.Generate(context.Background(), Request{Count: len(Jurisdictions), Kind: entity.LeadGovernmentOffice}, nil)
	require.NoError(t, err)
	require.Len(t, leads, len(Jurisdictions))

	for i, l := range leads {
		assert.Equal(t, Jurisdictions[i], l.Jurisdiction)
		assert.Equal(t, entity.LeadPending, l.Status)
		assert.True(t, strings.HasSuffix(l.Email, ".gov"))
	}
	assert.Equal(t, "contact@fultoncountyunemploymentoffice.gov", leads[0].Email)

	few, err := g.Generate(context.Background(), Request{Count: 2, Kind: entity.LeadGovernmentOffice}, nil)
	require.NoError(t, err)
	assert.Len(t, few, 2)

	_, err = g.Generate(context.Background(), Request{Count: 500, Kind: entity.LeadGovernmentOffice}, nil)
	assert.ErrorIs(t, err, ErrTooManyJurisdictions)
}

func TestGenerateReportsProgressPerChunk(t *testing.T) {
	var calls [][2]int
	_, err := newTestGenerator(40).Generate(context.Background(), Request{Count: 100, Kind: entity.LeadStudent}, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})

	require.NoError(t, err)
	assert.Equal(t, [][2]int{{40, 100}, {80, 100}, {100, 100}}, calls)
}

func TestGenerateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	leads, err := newTestGenerator(10).Generate(ctx, Request{Count: 1000, Kind: entity.LeadStudent}, func(done, total int) {
		if done >= 30 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, leads, 30)
}

func TestDuplicateIDIsFatal(t *testing.T) {
	g := newTestGenerator(10)
	g.newID = func() string { return "same" }

	assert.Panics(t, func() {
		g.Generate(context.Background(), Request{Count: 2, Kind: entity.LeadStudent}, nil)
	})
}
