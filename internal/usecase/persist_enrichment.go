package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

// PersistEnrichmentUseCase writes enrichment results back onto a stored lead
// as a partial update.
type PersistEnrichmentUseCase struct {
	Stores LeadStoreProvider
}

func NewPersistEnrichmentUseCase(stores LeadStoreProvider) *PersistEnrichmentUseCase {
	return &PersistEnrichmentUseCase{Stores: stores}
}

func (uc *PersistEnrichmentUseCase) Execute(ctx context.Context, id string, patch entity.EnrichmentPatch) error {
	if strings.TrimSpace(id) == "" {
		return &DomainError{Code: CodeValidation, Message: "lead id is required"}
	}
	if patch.IsEmpty() {
		return &DomainError{Code: CodeValidation, Message: "nothing to update: provide aiSummary, leadScore or scoreReasoning"}
	}
	if patch.LeadScore != nil && (*patch.LeadScore < 0 || *patch.LeadScore > 100) {
		return &DomainError{Code: CodeValidation, Message: "leadScore must be within 0..100"}
	}

	store, err := uc.Stores.Store(ctx)
	if err != nil {
		return &TechnicalError{Code: CodeStoreUnavailable, Message: "lead store unavailable", Err: err}
	}

	if err := store.UpdateEnrichment(ctx, id, patch); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return &TechnicalError{Code: CodeLeadNotFound, Message: "lead not found", Err: err}
		}
		return &TechnicalError{Code: CodeDatabase, Message: "failed to persist enrichment", Err: err}
	}
	return nil
}
