package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/config"
	"github.com/xavierca1/voyage-leads/internal/entity"
)

const initTimeout = 10 * time.Second

// Opener creates the backing lead store. It runs at most once per provider.
type Opener func(ctx context.Context) (entity.LeadStore, error)

// OpenerFor selects the backend named by store.driver.
func OpenerFor(cfg config.StoreConfig) (Opener, error) {
	switch cfg.Driver {
	case config.StoreDriverPostgres:
		return PostgresOpener(cfg.Postgres), nil
	case config.StoreDriverMongo:
		return MongoOpener(cfg.Mongo), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// StoreProvider opens the lead store on first use and hands out the same
// instance afterwards. A failed open is remembered: every later call gets the
// same error without touching the backend again.
type StoreProvider struct {
	open Opener
	log  *zap.Logger

	// openMu serializes the open itself; mu guards the state and is never
	// held across I/O.
	openMu  sync.Mutex
	mu      sync.Mutex
	opening bool
	opened  bool
	store   entity.LeadStore
	err     error
}

func NewStoreProvider(open Opener, log *zap.Logger) *StoreProvider {
	return &StoreProvider{open: open, log: log.Named("store")}
}

// Store returns the shared store or an error wrapping entity.ErrStoreUnavailable.
// Concurrent first callers wait for a single open.
func (p *StoreProvider) Store(ctx context.Context) (entity.LeadStore, error) {
	if s := p.snapshot(); s.opened {
		return s.store, s.err
	}

	p.openMu.Lock()
	defer p.openMu.Unlock()

	if s := p.snapshot(); s.opened {
		return s.store, s.err
	}
	p.mu.Lock()
	p.opening = true
	p.mu.Unlock()

	// The first caller's cancellation must not poison the cached result.
	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initTimeout)
	defer cancel()

	store, err := p.open(initCtx)
	if err != nil && !errors.Is(err, entity.ErrStoreUnavailable) {
		err = fmt.Errorf("%w: %w", entity.ErrStoreUnavailable, err)
	}

	p.mu.Lock()
	p.opening, p.opened = false, true
	if err != nil {
		p.err = err
	} else {
		p.store = store
	}
	p.mu.Unlock()

	if err != nil {
		p.log.Error("lead store initialization failed", zap.Error(err))
		return nil, err
	}
	p.log.Info("lead store initialized")
	return store, nil
}

// Status reports the store health without forcing or waiting for
// initialization.
func (p *StoreProvider) Status(ctx context.Context) string {
	s := p.snapshot()
	switch {
	case s.opening:
		return "initializing"
	case !s.opened:
		return "not initialized"
	case s.err != nil:
		return "unhealthy: " + s.err.Error()
	}
	if pinger, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			return "unhealthy: " + err.Error()
		}
	}
	return "healthy"
}

// Close releases the store if it was opened. An open in progress finishes
// first.
func (p *StoreProvider) Close(ctx context.Context) error {
	p.openMu.Lock()
	defer p.openMu.Unlock()

	if closer, ok := p.snapshot().store.(interface{ Close(context.Context) error }); ok {
		return closer.Close(ctx)
	}
	return nil
}

type providerState struct {
	opening bool
	opened  bool
	store   entity.LeadStore
	err     error
}

func (p *StoreProvider) snapshot() providerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return providerState{opening: p.opening, opened: p.opened, store: p.store, err: p.err}
}
