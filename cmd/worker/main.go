package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/config"
	"github.com/xavierca1/voyage-leads/internal/infra/cache"
	"github.com/xavierca1/voyage-leads/internal/infra/database"
	"github.com/xavierca1/voyage-leads/internal/infra/integration/genai"
	"github.com/xavierca1/voyage-leads/internal/infra/mail"
	"github.com/xavierca1/voyage-leads/internal/infra/queue"
	"github.com/xavierca1/voyage-leads/internal/infra/worker"
	"github.com/xavierca1/voyage-leads/internal/logger"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

// The worker consumes lead.captured events, enriches each lead and persists
// the results.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(zap.String("app", cfg.App.Name+"-worker"))
	defer log.Sync()

	if !cfg.RabbitMQ.Enabled() {
		log.Fatal("rabbitmq.url is required for the worker")
	}

	opener, err := database.OpenerFor(cfg.Store)
	if err != nil {
		log.Fatal("invalid store configuration", zap.Error(err))
	}
	stores := database.NewStoreProvider(opener, log)

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer rabbitMQ.Close()

	var completer usecase.Completer = genai.NewClient(cfg.GenAI, log)
	if cfg.Redis.Enabled() {
		rdb := cache.NewRedis(cfg.Redis)
		defer rdb.Close()
		completer = cache.NewCachedCompleter(completer, rdb, cfg.Redis.CacheTTL, usecase.AcceptableCompletion, log)
	}

	var notifier usecase.LeadNotifier
	if cfg.Mail.Enabled() {
		notifier = mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.To)
	}

	processUC := usecase.NewProcessCapturedLeadUseCase(
		stores,
		usecase.NewEnrichLeadUseCase(completer, log),
		notifier,
		cfg.Mail.ScoreThreshold,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Backfill.Enabled() {
		// Publishing gets its own channel so it never blocks deliveries.
		pubCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			log.Fatal("failed to open publish channel", zap.Error(err))
		}
		defer pubCh.Close()

		backfill := worker.NewBackfillWorker(stores, queue.NewProducer(pubCh), cfg.Backfill.Interval, cfg.Backfill.Grace, cfg.Backfill.MaxAge, log)
		go backfill.Start(ctx)
	}

	consumer := queue.NewWorker(rabbitMQ.Ch, processUC, log)
	if err := consumer.Start(ctx, queue.QueueName); err != nil {
		log.Error("worker stopped", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stores.Close(closeCtx); err != nil {
		log.Error("failed to close lead store", zap.Error(err))
	}
}
