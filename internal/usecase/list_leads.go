package usecase

import (
	"context"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

type ListLeadsUseCase struct {
	Stores LeadStoreProvider
}

func NewListLeadsUseCase(stores LeadStoreProvider) *ListLeadsUseCase {
	return &ListLeadsUseCase{Stores: stores}
}

// Execute returns the newest leads as application views, at most
// entity.MaxListLimit of them.
func (uc *ListLeadsUseCase) Execute(ctx context.Context, limit int) ([]entity.Lead, error) {
	store, err := uc.Stores.Store(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: CodeStoreUnavailable, Message: "lead store unavailable", Err: err}
	}

	records, err := store.List(ctx, entity.ClampListLimit(limit))
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to fetch leads", Err: err}
	}

	leads := make([]entity.Lead, 0, len(records))
	for _, rec := range records {
		leads = append(leads, ToLead(rec.ID, rec.StoredLead))
	}
	return leads, nil
}

func (uc *ListLeadsUseCase) Stats(ctx context.Context) (LeadStats, error) {
	leads, err := uc.Execute(ctx, entity.MaxListLimit)
	if err != nil {
		return LeadStats{}, err
	}
	return ComputeLeadStats(leads), nil
}
