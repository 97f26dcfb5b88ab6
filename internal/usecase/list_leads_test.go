package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

func TestListLeads(t *testing.T) {
	t.Run("maps records in store order", func(t *testing.T) {
		store := new(MockLeadStore)
		store.On("List", mock.Anything, entity.MaxListLimit).Return([]entity.LeadRecord{
			{ID: "b", StoredLead: entity.StoredLead{Name: strPtr("Newest")}},
			{ID: "a", StoredLead: entity.StoredLead{}},
		}, nil)

		leads, err := NewListLeadsUseCase(stubProvider{store: store}).Execute(context.Background(), 0)

		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, "b", leads[0].ID)
		assert.Equal(t, "Newest", leads[0].Name)
		assert.Equal(t, UnknownCallerName, leads[1].Name)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		store := new(MockLeadStore)
		store.On("List", mock.Anything, entity.MaxListLimit).Return([]entity.LeadRecord{}, nil)

		leads, err := NewListLeadsUseCase(stubProvider{store: store}).Execute(context.Background(), 5000)

		require.NoError(t, err)
		assert.Empty(t, leads)
		store.AssertExpectations(t)
	})

	t.Run("store unavailable", func(t *testing.T) {
		_, err := NewListLeadsUseCase(stubProvider{err: entity.ErrStoreUnavailable}).Execute(context.Background(), 10)
		assert.ErrorIs(t, err, entity.ErrStoreUnavailable)
	})

	t.Run("query failure", func(t *testing.T) {
		store := new(MockLeadStore)
		store.On("List", mock.Anything, 10).Return(nil, errors.New("syntax error"))

		_, err := NewListLeadsUseCase(stubProvider{store: store}).Execute(context.Background(), 10)

		var te *TechnicalError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeDatabase, te.Code)
	})
}

func TestLeadStatsUseCase(t *testing.T) {
	store := new(MockLeadStore)
	store.On("List", mock.Anything, entity.MaxListLimit).Return([]entity.LeadRecord{{ID: "a"}, {ID: "b"}}, nil)

	stats, err := NewListLeadsUseCase(stubProvider{store: store}).Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, LeadStats{Total: 2, Qualified: 0}, stats)
}
