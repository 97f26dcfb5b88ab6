package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/metrics"
	"github.com/xavierca1/voyage-leads/internal/infra/queue"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

// BackfillWorker re-announces leads that were stored but never enriched,
// typically because the lead.captured event was lost while the broker was down.
// Each lead is re-announced at most once per process.
type BackfillWorker struct {
	Stores    usecase.LeadStoreProvider
	Publisher usecase.EventPublisher
	Logger    *zap.Logger

	tickInterval time.Duration
	// Leads younger than grace may still be in flight.
	grace time.Duration
	// Leads older than maxAge are left alone.
	maxAge time.Duration

	now       func() time.Time
	announced map[string]time.Time
}

func NewBackfillWorker(stores usecase.LeadStoreProvider, publisher usecase.EventPublisher, interval, grace, maxAge time.Duration, logger *zap.Logger) *BackfillWorker {
	return &BackfillWorker{
		Stores:       stores,
		Publisher:    publisher,
		Logger:       logger.Named("backfill"),
		tickInterval: interval,
		grace:        grace,
		maxAge:       maxAge,
		now:          time.Now,
		announced:    make(map[string]time.Time),
	}
}

func (w *BackfillWorker) Start(ctx context.Context) {
	w.Logger.Info("backfill worker started",
		zap.Duration("interval", w.tickInterval),
		zap.Duration("grace", w.grace),
		zap.Duration("max_age", w.maxAge),
	)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("backfill worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep returns how many leads were re-announced.
func (w *BackfillWorker) sweep(ctx context.Context) int {
	store, err := w.Stores.Store(ctx)
	if err != nil {
		w.Logger.Warn("lead store unavailable, skipping sweep", zap.Error(err))
		return 0
	}

	records, err := store.List(ctx, entity.MaxListLimit)
	if err != nil {
		w.Logger.Error("failed to list leads", zap.Error(err))
		return 0
	}

	now := w.now()
	for id, at := range w.announced {
		if now.Sub(at) > w.maxAge {
			delete(w.announced, id)
		}
	}

	count := 0
	for _, rec := range records {
		age := now.Sub(rec.CreatedAt)
		if rec.EnrichedAt != nil || age < w.grace || age > w.maxAge {
			continue
		}
		if _, done := w.announced[rec.ID]; done {
			continue
		}

		event := queue.LeadCapturedEvent{
			EventID:    uuid.New().String(),
			LeadID:     rec.ID,
			Source:     string(rec.Source),
			OccurredAt: now.UTC(),
		}
		if err := w.Publisher.PublishLeadCaptured(ctx, event); err != nil {
			metrics.RecordIntegrationError("rabbitmq")
			w.Logger.Error("failed to re-announce lead", zap.String("lead_id", rec.ID), zap.Error(err))
			continue
		}
		w.announced[rec.ID] = now
		count++
	}

	if count > 0 {
		w.Logger.Info("re-announced unenriched leads", zap.Int("count", count))
	}
	return count
}
