package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/xavierca1/voyage-leads/internal/config"
	"github.com/xavierca1/voyage-leads/internal/entity"
)

// NewDBConnection opens the pool and pings it.
func NewDBConnection(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// PostgresOpener connects, applies the schema and returns the repository.
func PostgresOpener(cfg config.PostgresConfig) Opener {
	return func(ctx context.Context) (entity.LeadStore, error) {
		if cfg.URL == "" {
			return nil, fmt.Errorf("%w: postgres url is empty", entity.ErrStoreNotConfigured)
		}

		db, err := NewDBConnection(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := EnsureSchema(ctx, db); err != nil {
			return nil, errors.Join(err, db.Close())
		}

		return NewLeadRepository(db), nil
	}
}
