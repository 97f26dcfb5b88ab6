package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/metrics"
)

const (
	SummaryFallback           = "Unable to generate summary at this time."
	InsufficientDataSummary   = "Insufficient conversation data to generate a summary."
	ScoreFallbackReasoning    = "Unable to score this lead automatically. Please review the conversation manually."
	InsufficientDataReasoning = "Not enough conversation data to assess this lead."

	FlowSummary = "summary"
	FlowScore   = "score"
)

var enrichTracer = otel.Tracer("voyage.internal.usecase.enrich")

var compiledScoreSchema = mustCompileSchema(scoreSchema.Schema)

type LeadScore struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// EnrichLeadUseCase runs the Summarize and Score flows. Neither touches the
// store and neither returns an error: failures come back as fallbacks.
type EnrichLeadUseCase struct {
	Completer Completer
	Logger    *zap.Logger
}

func NewEnrichLeadUseCase(completer Completer, logger *zap.Logger) *EnrichLeadUseCase {
	return &EnrichLeadUseCase{
		Completer: completer,
		Logger:    logger.Named("enrichment"),
	}
}

func (uc *EnrichLeadUseCase) Summarize(ctx context.Context, lead entity.Lead) Result[string] {
	ctx, span := enrichTracer.Start(ctx, "enrichment.summarize", leadAttributes(lead))
	defer span.End()

	msgs := AssembleConversation(lead)
	if len(msgs) == 0 {
		return finish(uc, span, FlowSummary, lead, Fallback(InsufficientDataSummary, "empty conversation"))
	}

	out, err := uc.Completer.Complete(ctx, CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   buildSummaryPrompt(lead, FlattenConversation(msgs)),
	})
	if err != nil {
		span.RecordError(err)
		return finish(uc, span, FlowSummary, lead, Fallback(SummaryFallback, "completion failed: "+err.Error()))
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		return finish(uc, span, FlowSummary, lead, Fallback(SummaryFallback, "empty completion"))
	}
	return finish(uc, span, FlowSummary, lead, Ok(summary))
}

func (uc *EnrichLeadUseCase) Score(ctx context.Context, lead entity.Lead) Result[LeadScore] {
	ctx, span := enrichTracer.Start(ctx, "enrichment.score", leadAttributes(lead))
	defer span.End()

	msgs := AssembleConversation(lead)
	if len(msgs) == 0 {
		return finish(uc, span, FlowScore, lead, Fallback(LeadScore{Reasoning: InsufficientDataReasoning}, "empty conversation"))
	}

	out, err := uc.Completer.Complete(ctx, CompletionRequest{
		SystemPrompt: scoreSystemPrompt,
		UserPrompt:   buildScorePrompt(lead, FlattenConversation(msgs)),
		Schema:       &scoreSchema,
	})
	if err != nil {
		span.RecordError(err)
		return finish(uc, span, FlowScore, lead, scoreFallback("completion failed: "+err.Error()))
	}

	score, err := ParseScore(out)
	if err != nil {
		span.RecordError(err)
		return finish(uc, span, FlowScore, lead, scoreFallback(err.Error()))
	}

	if span.IsRecording() {
		span.SetAttributes(attribute.Float64("lead.score", score.Score))
	}
	return finish(uc, span, FlowScore, lead, Ok(score))
}

// ParseScore validates a completion against the score schema. Markdown code
// fences and surrounding prose are tolerated; the score is clamped to 0..100.
func ParseScore(raw string) (LeadScore, error) {
	body := extractJSONObject(raw)
	if body == "" {
		return LeadScore{}, errors.New("score output is empty")
	}

	res, err := compiledScoreSchema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return LeadScore{}, fmt.Errorf("score output is not valid json: %w", err)
	}
	if !res.Valid() {
		errs := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			errs[i] = desc.String()
		}
		return LeadScore{}, fmt.Errorf("score output does not match schema: %s", strings.Join(errs, "; "))
	}

	var score LeadScore
	if err := json.Unmarshal([]byte(body), &score); err != nil {
		return LeadScore{}, fmt.Errorf("decode score output: %w", err)
	}

	score.Reasoning = strings.TrimSpace(score.Reasoning)
	if score.Reasoning == "" {
		return LeadScore{}, errors.New("score output has blank reasoning")
	}
	score.Score = min(max(score.Score, 0), 100)
	return score, nil
}

// AcceptableCompletion reports whether out is an answer the flows would keep:
// never blank, and valid against the request schema when one is declared.
func AcceptableCompletion(req CompletionRequest, out string) bool {
	if strings.TrimSpace(out) == "" {
		return false
	}
	switch {
	case req.Schema == nil:
		return true
	case req.Schema.Name == scoreSchema.Name:
		_, err := ParseScore(out)
		return err == nil
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(req.Schema.Schema),
		gojsonschema.NewStringLoader(extractJSONObject(out)),
	)
	return err == nil && res.Valid()
}

func scoreFallback(reason string) Result[LeadScore] {
	return Fallback(LeadScore{Score: 0, Reasoning: ScoreFallbackReasoning}, reason)
}

// finish records the outcome of a flow on the span, the log and the metrics.
func finish[T any](uc *EnrichLeadUseCase, span trace.Span, flow string, lead entity.Lead, r Result[T]) Result[T] {
	outcome := metrics.OutcomeOK
	if r.IsOK() {
		uc.Logger.Debug("enrichment completed", zap.String("flow", flow), zap.String("lead_id", lead.ID))
	} else {
		outcome = metrics.OutcomeFallback
		uc.Logger.Warn("enrichment degraded to fallback",
			zap.String("flow", flow),
			zap.String("lead_id", lead.ID),
			zap.String("reason", r.Reason),
		)
	}
	metrics.RecordEnrichment(flow, outcome)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("enrichment.outcome", outcome))
	}
	return r
}

func leadAttributes(lead entity.Lead) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("lead.id", lead.ID),
		attribute.String("lead.interaction_type", string(lead.InteractionType)),
	)
}

// extractJSONObject strips code fences and keeps the outermost {...}.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

func mustCompileSchema(raw json.RawMessage) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile output schema: %v", err))
	}
	return schema
}
