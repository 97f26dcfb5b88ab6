package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

type LeadHandler struct {
	ListUC *usecase.ListLeadsUseCase
	Logger *zap.Logger
}

func NewLeadHandler(listUC *usecase.ListLeadsUseCase, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{ListUC: listUC, Logger: logger.Named("leads")}
}

// List returns the newest leads. An optional ?limit is clamped to 1..100.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := entity.MaxListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
			return
		}
		limit = n
	}

	leads, err := h.ListUC.Execute(r.Context(), limit)
	if err != nil {
		h.fail(w, "Failed to fetch leads", err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ListUC.Stats(r.Context())
	if err != nil {
		h.fail(w, "Failed to compute lead stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *LeadHandler) fail(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, entity.ErrStoreUnavailable) {
		h.Logger.Error("lead store unavailable", zap.Error(err))
		writeStoreUnavailable(w, err)
		return
	}
	h.Logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg, err.Error())
}
