package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

const (
	summaryFailedMessage = "Failed to generate summary"
	scoreFailedMessage   = "Failed to generate lead score"
)

type EnrichmentHandler struct {
	EnrichUC  *usecase.EnrichLeadUseCase
	PersistUC *usecase.PersistEnrichmentUseCase
	Logger    *zap.Logger
}

func NewEnrichmentHandler(enrichUC *usecase.EnrichLeadUseCase, persistUC *usecase.PersistEnrichmentUseCase, logger *zap.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{EnrichUC: enrichUC, PersistUC: persistUC, Logger: logger.Named("enrichment")}
}

// EnrichmentResponse carries the flow value even on fallback; Success tells
// the dashboard whether it is a real result.
type EnrichmentResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

type SummaryData struct {
	Summary string `json:"summary"`
}

func (h *EnrichmentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var lead entity.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error())
		return
	}

	res := h.EnrichUC.Summarize(r.Context(), lead)
	resp := EnrichmentResponse[SummaryData]{Success: res.IsOK(), Data: SummaryData{Summary: res.Value}}
	if !res.IsOK() {
		resp.Error = summaryFailedMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EnrichmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	var lead entity.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error())
		return
	}

	res := h.EnrichUC.Score(r.Context(), lead)
	resp := EnrichmentResponse[usecase.LeadScore]{Success: res.IsOK(), Data: res.Value}
	if !res.IsOK() {
		resp.Error = scoreFailedMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

// Persist stores enrichment results on the lead named in the path.
func (h *EnrichmentHandler) Persist(w http.ResponseWriter, r *http.Request) {
	var patch entity.EnrichmentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error())
		return
	}

	err := h.PersistUC.Execute(r.Context(), chi.URLParam(r, "id"), patch)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case usecase.IsDomainError(err):
		writeError(w, http.StatusBadRequest, "Invalid enrichment", err.Error())
	case errors.Is(err, entity.ErrLeadNotFound):
		writeError(w, http.StatusNotFound, "Lead not found", "")
	case errors.Is(err, entity.ErrStoreUnavailable):
		h.Logger.Error("lead store unavailable", zap.Error(err))
		writeStoreUnavailable(w, err)
	default:
		h.Logger.Error("failed to persist enrichment", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to persist enrichment", "")
	}
}
