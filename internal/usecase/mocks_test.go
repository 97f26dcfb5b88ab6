package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/mail"
	"github.com/xavierca1/voyage-leads/internal/infra/queue"
)

// MockCompleter
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockLeadStore
type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) Save(ctx context.Context, lead *entity.StoredLead) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

func (m *MockLeadStore) List(ctx context.Context, limit int) ([]entity.LeadRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeadRecord), args.Error(1)
}

func (m *MockLeadStore) FindByID(ctx context.Context, id string) (*entity.LeadRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadRecord), args.Error(1)
}

func (m *MockLeadStore) UpdateEnrichment(ctx context.Context, id string, patch entity.EnrichmentPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

// stubProvider hands out a fixed store or error.
type stubProvider struct {
	store entity.LeadStore
	err   error
}

func (p stubProvider) Store(context.Context) (entity.LeadStore, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.store, nil
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadCaptured(ctx context.Context, event queue.LeadCapturedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendLeadAlert(alert mail.LeadAlert) error {
	args := m.Called(alert)
	return args.Error(0)
}

func isScoreRequest(req CompletionRequest) bool   { return req.Schema != nil }
func isSummaryRequest(req CompletionRequest) bool { return req.Schema == nil }

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
