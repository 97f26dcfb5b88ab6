package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/config"
	"github.com/xavierca1/voyage-leads/internal/infra/cache"
	"github.com/xavierca1/voyage-leads/internal/infra/database"
	"github.com/xavierca1/voyage-leads/internal/infra/http/handlers"
	"github.com/xavierca1/voyage-leads/internal/infra/http/middleware"
	"github.com/xavierca1/voyage-leads/internal/infra/integration/genai"
	"github.com/xavierca1/voyage-leads/internal/infra/queue"
	"github.com/xavierca1/voyage-leads/internal/logger"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(zap.String("app", cfg.App.Name))
	defer log.Sync()

	// 1. Lead store, opened on first use
	opener, err := database.OpenerFor(cfg.Store)
	if err != nil {
		log.Fatal("invalid store configuration", zap.Error(err))
	}
	stores := database.NewStoreProvider(opener, log)

	// 2. Optional infrastructure
	var (
		rabbitMQ  *queue.RabbitMQ
		publisher usecase.EventPublisher
	)
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Warn("rabbitmq unavailable, leads will only be enriched on demand", zap.Error(err))
		} else {
			defer rabbitMQ.Close()
			publisher = queue.NewProducer(rabbitMQ.Ch)
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = cache.NewRedis(cfg.Redis)
		defer rdb.Close()
	}

	// 3. Completion capability
	genaiClient := genai.NewClient(cfg.GenAI, log)
	var enrichCompleter usecase.Completer = genaiClient
	if rdb != nil {
		enrichCompleter = cache.NewCachedCompleter(genaiClient, rdb, cfg.Redis.CacheTTL, usecase.AcceptableCompletion, log)
	}

	// 4. UseCases
	captureUC := usecase.NewCaptureCallLeadUseCase(stores, publisher, log)
	listUC := usecase.NewListLeadsUseCase(stores)
	enrichUC := usecase.NewEnrichLeadUseCase(enrichCompleter, log)
	persistUC := usecase.NewPersistEnrichmentUseCase(stores)
	chatUC := usecase.NewChatAgentUseCase(genaiClient, log)

	// 5. Handlers
	router := newRouter(routes{
		Webhook:     handlers.NewWebhookHandler(captureUC, cfg.Webhook.Secret, log),
		Leads:       handlers.NewLeadHandler(listUC, log),
		Enrichment:  handlers.NewEnrichmentHandler(enrichUC, persistUC, log),
		Chat:        handlers.NewChatHandler(chatUC, log),
		Health:      handlers.NewHealthHandler(stores, rabbitMQ, rdb, cfg.GenAI.APIKey != "", version),
		ChatLimiter: middleware.NewRateLimiter(cfg.Chat.RateLimit, cfg.Chat.RateWindow),
	}, cfg.App.AllowedOrigins, log)

	srv := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := stores.Close(shutdownCtx); err != nil {
		log.Error("failed to close lead store", zap.Error(err))
	}
}
