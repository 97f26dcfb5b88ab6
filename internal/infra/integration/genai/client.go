package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/config"
	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/metrics"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

var (
	ErrNotConfigured = errors.New("genai: api key is not configured")
	ErrNoChoices     = errors.New("genai: completion returned no choices")
)

var tracer = otel.Tracer("voyage.internal.genai")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client talks to any OpenAI compatible chat completion endpoint.
type Client struct {
	api     chatClient
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(cfg config.GenAIConfig, logger *zap.Logger) *Client {
	c := &Client{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("genai"),
	}
	if cfg.APIKey == "" {
		return c
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	c.api = openai.NewClientWithConfig(oc)
	return c
}

// Complete sends the system prompt, the history and the user prompt in that
// order. With a schema the endpoint is asked for strict JSON output.
func (c *Client) Complete(ctx context.Context, req usecase.CompletionRequest) (string, error) {
	if c.api == nil {
		return "", ErrNotConfigured
	}

	ctx, span := tracer.Start(ctx, "genai.complete")
	defer span.End()

	creq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: buildMessages(req),
	}
	if req.Schema != nil {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Schema,
			},
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(callCtx, creq)
	latency := time.Since(start)

	status := metrics.OutcomeOK
	if err != nil {
		status = metrics.OutcomeError
	}
	metrics.ObserveCompletion(c.model, status, latency)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("genai.model", c.model),
			attribute.Int64("genai.latency_ms", latency.Milliseconds()),
		)
	}

	if err != nil {
		span.RecordError(err)
		metrics.RecordIntegrationError("genai")
		c.logger.Warn("completion failed", zap.String("model", c.model), zap.Duration("latency", latency), zap.Error(err))
		return "", fmt.Errorf("genai: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		span.RecordError(ErrNoChoices)
		return "", ErrNoChoices
	}

	c.logger.Debug("completion finished",
		zap.String("model", c.model),
		zap.Duration("latency", latency),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(req usecase.CompletionRequest) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == entity.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.UserPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})
	}
	return msgs
}
