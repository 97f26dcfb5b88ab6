package usecase

import (
	"context"
	"encoding/json"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/mail"
	"github.com/xavierca1/voyage-leads/internal/infra/queue"
)

// Message is one conversation turn handed to the completion service.
type Message struct {
	Role    entity.ChatRole `json:"role"`
	Content string          `json:"content"`
}

// OutputSchema is a JSON schema the completion output must satisfy.
type OutputSchema struct {
	Name   string
	Schema json.RawMessage
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	History      []Message
	// Schema is nil for free text output.
	Schema *OutputSchema
}

// Completer is the generative AI completion capability.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// LeadStoreProvider hands out the lazily opened lead store.
type LeadStoreProvider interface {
	Store(ctx context.Context) (entity.LeadStore, error)
}

type EventPublisher interface {
	PublishLeadCaptured(ctx context.Context, event queue.LeadCapturedEvent) error
}

type LeadNotifier interface {
	SendLeadAlert(alert mail.LeadAlert) error
}
