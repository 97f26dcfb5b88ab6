package entity

import (
	"context"
	"errors"
	"fmt"
)

// MaxListLimit caps how many leads a single List call returns.
const MaxListLimit = 100

var (
	// ErrStoreUnavailable marks a store that is not configured or cannot be
	// reached. Boundaries report it as "service unavailable".
	ErrStoreUnavailable = errors.New("lead store unavailable")
	// ErrStoreNotConfigured is the ErrStoreUnavailable case where no backend
	// address was configured at all.
	ErrStoreNotConfigured = fmt.Errorf("%w: not configured", ErrStoreUnavailable)
	ErrLeadNotFound       = errors.New("lead not found")
	ErrLeadAlreadyStored  = errors.New("lead already stored")
)

// EnrichmentPatch carries the enrichment fields to write back. Nil fields are
// left untouched.
type EnrichmentPatch struct {
	AISummary      *string  `json:"aiSummary"`
	LeadScore      *float64 `json:"leadScore"`
	ScoreReasoning *string  `json:"scoreReasoning"`
}

func (p EnrichmentPatch) IsEmpty() bool {
	return p.AISummary == nil && p.LeadScore == nil && p.ScoreReasoning == nil
}

type LeadStore interface {
	// Save appends a new lead and returns its id. The store assigns CreatedAt.
	// A lead whose ExternalID was already stored yields ErrLeadAlreadyStored.
	Save(ctx context.Context, lead *StoredLead) (string, error)
	// List returns leads newest first, at most limit (clamped to MaxListLimit).
	List(ctx context.Context, limit int) ([]LeadRecord, error)
	FindByID(ctx context.Context, id string) (*LeadRecord, error)
	UpdateEnrichment(ctx context.Context, id string, patch EnrichmentPatch) error
}

// ClampListLimit maps a requested limit into 1..MaxListLimit.
func ClampListLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
