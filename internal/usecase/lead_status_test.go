package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/infra/memstore"
)

func seedLeads(t *testing.T, leads ...*entity.Lead) *memstore.LeadRepository {
	t.Helper()
	repo := memstore.NewLeadRepository()
	require.NoError(t, repo.SaveBatch(context.Background(), leads))
	return repo
}

func TestUpdateLeadStatusForward(t *testing.T) {
	repo := seedLeads(t, &entity.Lead{ID: "l1", Kind: entity.LeadStudent, Status: entity.LeadNew})
	uc := NewUpdateLeadStatusUseCase(repo)

	lead, err := uc.Execute(context.Background(), UpdateLeadStatusInput{LeadID: "l1", Status: entity.LeadQualified})

	require.NoError(t, err)
	assert.Equal(t, entity.LeadQualified, lead.Status)
}

func TestUpdateLeadStatusRejectsRegression(t *testing.T) {
	repo := seedLeads(t,
		&entity.Lead{ID: "l1", Status: entity.LeadQualified},
		&entity.Lead{ID: "l2", Status: entity.LeadDeclined},
	)
	uc := NewUpdateLeadStatusUseCase(repo)

	tests := []struct {
		id     string
		status entity.LeadStatus
	}{
		{"l1", entity.LeadContacted},
		{"l1", entity.LeadQualified},
		{"l2", entity.LeadConverted},
	}
	for _, tt := range tests {
		_, err := uc.Execute(context.Background(), UpdateLeadStatusInput{LeadID: tt.id, Status: tt.status})

		var de *DomainError
		require.True(t, errors.As(err, &de), "%s -> %s", tt.id, tt.status)
		assert.Equal(t, CodeInvalidTransition, de.Code)
	}
}

func TestUpdateLeadStatusNotFoundAndInvalid(t *testing.T) {
	uc := NewUpdateLeadStatusUseCase(seedLeads(t))

	_, err := uc.Execute(context.Background(), UpdateLeadStatusInput{LeadID: "nope", Status: entity.LeadContacted})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeNotFound, de.Code)

	_, err = uc.Execute(context.Background(), UpdateLeadStatusInput{LeadID: "nope", Status: "Archived"})
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeValidation, de.Code)
}

func TestListLeadsClampsLimit(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("List", context.Background(), entity.LeadFilter{Kind: entity.LeadStudent, Limit: maxListLimit}).Return([]*entity.Lead{}, nil)
	uc := NewListLeadsUseCase(repo)

	_, err := uc.Execute(context.Background(), entity.LeadFilter{Kind: entity.LeadStudent, Limit: 50000, Offset: -3})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
