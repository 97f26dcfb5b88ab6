package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/usecase"
)

type ChatHandler struct {
	ChatUC *usecase.ChatAgentUseCase
	Logger *zap.Logger
}

func NewChatHandler(chatUC *usecase.ChatAgentUseCase, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{ChatUC: chatUC, Logger: logger.Named("chat")}
}

func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error())
		return
	}

	out, err := h.ChatUC.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeError(w, http.StatusBadRequest, "Invalid chat message", err.Error())
			return
		}
		h.Logger.Error("chat failed", zap.String("lead_id", input.LeadID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to process chat message", "")
		return
	}

	writeJSON(w, http.StatusOK, out)
}
