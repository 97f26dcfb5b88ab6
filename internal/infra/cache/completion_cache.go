package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/config"
	"github.com/xavierca1/voyage-leads/internal/infra/metrics"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

const keyPrefix = "voyage:completion:"

func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

// AcceptFunc decides whether a completion is worth keeping.
type AcceptFunc func(req usecase.CompletionRequest, out string) bool

// CachedCompleter serves repeated completion requests from Redis. Only
// completions that accept approves are stored, so a rejected answer is asked
// again next time. Any Redis failure falls through to the wrapped completer.
type CachedCompleter struct {
	next   usecase.Completer
	rdb    *redis.Client
	ttl    time.Duration
	accept AcceptFunc
	logger *zap.Logger
}

// NewCachedCompleter wraps next. A nil accept keeps every non-blank completion.
func NewCachedCompleter(next usecase.Completer, rdb *redis.Client, ttl time.Duration, accept AcceptFunc, logger *zap.Logger) *CachedCompleter {
	if accept == nil {
		accept = nonBlank
	}
	return &CachedCompleter{next: next, rdb: rdb, ttl: ttl, accept: accept, logger: logger.Named("completion_cache")}
}

func (c *CachedCompleter) Complete(ctx context.Context, req usecase.CompletionRequest) (string, error) {
	key, err := Key(req)
	if err != nil {
		return c.next.Complete(ctx, req)
	}

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.RecordCacheLookup(true)
		return cached, nil
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup(false)
	default:
		c.logger.Warn("cache read failed", zap.Error(err))
	}

	out, err := c.next.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if !c.accept(req, out) {
		c.logger.Debug("completion not cached", zap.String("schema", schemaName(req)))
		return out, nil
	}
	if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.Error(err))
	}
	return out, nil
}

func nonBlank(_ usecase.CompletionRequest, out string) bool {
	return strings.TrimSpace(out) != ""
}

func schemaName(req usecase.CompletionRequest) string {
	if req.Schema == nil {
		return ""
	}
	return req.Schema.Name
}

// Key hashes everything that influences the completion output.
func Key(req usecase.CompletionRequest) (string, error) {
	var schema json.RawMessage
	var schemaName string
	if req.Schema != nil {
		schema, schemaName = req.Schema.Schema, req.Schema.Name
	}

	raw, err := json.Marshal(struct {
		System     string            `json:"system"`
		User       string            `json:"user"`
		History    []usecase.Message `json:"history"`
		SchemaName string            `json:"schema_name"`
		Schema     json.RawMessage   `json:"schema,omitempty"`
	}{req.SystemPrompt, req.UserPrompt, req.History, schemaName, schema})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}

	sum := sha256.Sum256(raw)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}
