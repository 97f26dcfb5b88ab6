package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/integration/elevenlabs"
	"github.com/xavierca1/voyage-leads/internal/infra/metrics"
	"github.com/xavierca1/voyage-leads/internal/infra/queue"
)

// CaptureCallLeadUseCase stores the lead carried by a post-call webhook and
// announces it for asynchronous enrichment.
type CaptureCallLeadUseCase struct {
	Stores LeadStoreProvider
	// Publisher is optional; without it leads are only enriched on demand.
	Publisher EventPublisher
	Logger    *zap.Logger
}

func NewCaptureCallLeadUseCase(stores LeadStoreProvider, publisher EventPublisher, logger *zap.Logger) *CaptureCallLeadUseCase {
	return &CaptureCallLeadUseCase{
		Stores:    stores,
		Publisher: publisher,
		Logger:    logger.Named("capture"),
	}
}

func (uc *CaptureCallLeadUseCase) Execute(ctx context.Context, payload elevenlabs.Payload) (*CaptureCallLeadOutput, error) {
	lead := elevenlabs.Normalize(payload)

	store, err := uc.Stores.Store(ctx)
	if err != nil {
		metrics.RecordLeadCaptured(metrics.CaptureFailed)
		return nil, &TechnicalError{Code: CodeStoreUnavailable, Message: "lead store unavailable", Err: err}
	}

	id, err := store.Save(ctx, &lead)
	if errors.Is(err, entity.ErrLeadAlreadyStored) {
		metrics.RecordLeadCaptured(metrics.CaptureDuplicate)
		uc.Logger.Info("duplicate post-call delivery ignored", zap.Stringp("external_id", lead.ExternalID))
		return &CaptureCallLeadOutput{Duplicate: true}, nil
	}
	if err != nil {
		metrics.RecordLeadCaptured(metrics.CaptureFailed)
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to store lead", Err: err}
	}

	metrics.RecordLeadCaptured(metrics.CaptureStored)
	uc.Logger.Info("lead captured",
		zap.String("lead_id", id),
		zap.Stringp("external_id", lead.ExternalID),
		zap.Time("created_at", lead.CreatedAt),
	)

	if uc.Publisher != nil {
		event := queue.LeadCapturedEvent{
			EventID:    uuid.New().String(),
			LeadID:     id,
			Source:     string(lead.Source),
			OccurredAt: time.Now().UTC(),
		}
		// The lead is already stored; a lost event only delays enrichment.
		if err := uc.Publisher.PublishLeadCaptured(ctx, event); err != nil {
			metrics.RecordIntegrationError("rabbitmq")
			uc.Logger.Warn("failed to publish lead captured event", zap.String("lead_id", id), zap.Error(err))
		}
	}

	return &CaptureCallLeadOutput{LeadID: id}, nil
}
