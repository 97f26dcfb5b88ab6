package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

// maxChatHistory bounds the turns forwarded to the completion service.
const maxChatHistory = 40

// ChatAgentUseCase answers a customer message as the booking assistant.
type ChatAgentUseCase struct {
	Completer Completer
	Logger    *zap.Logger
	now       func() time.Time
}

func NewChatAgentUseCase(completer Completer, logger *zap.Logger) *ChatAgentUseCase {
	return &ChatAgentUseCase{
		Completer: completer,
		Logger:    logger.Named("chat"),
		now:       time.Now,
	}
}

func (uc *ChatAgentUseCase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	if err := validateChatInput(input); err != nil {
		return nil, err
	}

	history := input.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	reply, err := uc.Completer.Complete(ctx, CompletionRequest{
		SystemPrompt: chatSystemPrompt,
		History:      history,
		UserPrompt:   input.Message,
	})
	if err != nil {
		uc.Logger.Error("chat completion failed", zap.String("lead_id", input.LeadID), zap.Error(err))
		return nil, &TechnicalError{Code: CodeCompletion, Message: "chat completion failed", Err: err}
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, &TechnicalError{Code: CodeCompletion, Message: "chat completion returned no content"}
	}

	return &ChatOutput{
		ID:        uuid.New().String(),
		Message:   reply,
		Timestamp: uc.now().UTC(),
	}, nil
}

func validateChatInput(input ChatInput) error {
	if strings.TrimSpace(input.Message) == "" {
		return &DomainError{Code: CodeValidation, Message: "message is required"}
	}
	if strings.TrimSpace(input.LeadID) == "" {
		return &DomainError{Code: CodeValidation, Message: "leadId is required"}
	}
	for i, m := range input.History {
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			return &DomainError{Code: CodeValidation, Message: fmt.Sprintf("history[%d].role must be user or assistant", i)}
		}
	}
	return nil
}
