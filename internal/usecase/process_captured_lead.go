package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/mail"
	"github.com/xavierca1/voyage-leads/internal/infra/metrics"
	"github.com/xavierca1/voyage-leads/internal/infra/queue"
)

// ProcessCapturedLeadUseCase enriches a freshly captured lead, persists the
// successful results and alerts sales about hot leads.
type ProcessCapturedLeadUseCase struct {
	Stores   LeadStoreProvider
	Enricher *EnrichLeadUseCase
	// Notifier is optional.
	Notifier       LeadNotifier
	AlertThreshold float64
	Logger         *zap.Logger
}

func NewProcessCapturedLeadUseCase(
	stores LeadStoreProvider,
	enricher *EnrichLeadUseCase,
	notifier LeadNotifier,
	alertThreshold float64,
	logger *zap.Logger,
) *ProcessCapturedLeadUseCase {
	return &ProcessCapturedLeadUseCase{
		Stores:         stores,
		Enricher:       enricher,
		Notifier:       notifier,
		AlertThreshold: alertThreshold,
		Logger:         logger.Named("process"),
	}
}

// Process implements queue.LeadProcessor. Only infrastructure failures are
// returned; fallbacks are not persisted and not retried.
func (uc *ProcessCapturedLeadUseCase) Process(ctx context.Context, event queue.LeadCapturedEvent) error {
	log := uc.Logger.With(zap.String("lead_id", event.LeadID))

	store, err := uc.Stores.Store(ctx)
	if err != nil {
		return &TechnicalError{Code: CodeStoreUnavailable, Message: "lead store unavailable", Err: err}
	}

	rec, err := store.FindByID(ctx, event.LeadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		log.Warn("captured lead no longer exists")
		return nil
	}
	if err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to load lead", Err: err}
	}

	lead := ToLead(rec.ID, rec.StoredLead)

	var (
		wg      sync.WaitGroup
		summary Result[string]
		score   Result[LeadScore]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		summary = uc.Enricher.Summarize(ctx, lead)
	}()
	go func() {
		defer wg.Done()
		score = uc.Enricher.Score(ctx, lead)
	}()
	wg.Wait()

	var patch entity.EnrichmentPatch
	if summary.IsOK() {
		patch.AISummary = &summary.Value
	}
	if score.IsOK() {
		patch.LeadScore = &score.Value.Score
		patch.ScoreReasoning = &score.Value.Reasoning
	}
	if patch.IsEmpty() {
		log.Warn("no enrichment result to persist",
			zap.String("summary_reason", summary.Reason),
			zap.String("score_reason", score.Reason),
		)
		return nil
	}

	if err := store.UpdateEnrichment(ctx, lead.ID, patch); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			log.Warn("lead removed before enrichment was stored")
			return nil
		}
		return &TechnicalError{Code: CodeDatabase, Message: "failed to persist enrichment", Err: err}
	}
	log.Info("enrichment persisted", zap.Bool("summary", summary.IsOK()), zap.Bool("score", score.IsOK()))

	if score.IsOK() && score.Value.Score >= uc.AlertThreshold {
		uc.alert(log, lead, score.Value, patch.AISummary)
	}
	return nil
}

func (uc *ProcessCapturedLeadUseCase) alert(log *zap.Logger, lead entity.Lead, score LeadScore, summary *string) {
	if uc.Notifier == nil {
		return
	}

	fi := lead.FlightInquiry
	dates := fi.DepartureDate
	if fi.ReturnDate != nil {
		dates += " - " + *fi.ReturnDate
	}
	alert := mail.LeadAlert{
		LeadID:      lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Route:       fi.Origin + " to " + fi.Destination,
		TravelDates: dates,
		Score:       score.Score,
		Reasoning:   score.Reasoning,
		Summary:     deref(summary),
	}

	// A failed alert never fails the message: the enrichment is already stored.
	if err := uc.Notifier.SendLeadAlert(alert); err != nil {
		metrics.RecordIntegrationError("smtp")
		log.Error("failed to send lead alert", zap.Error(err))
		return
	}
	log.Info("hot lead alert sent", zap.Float64("score", score.Score))
}
