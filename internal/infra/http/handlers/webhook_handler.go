package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/entity"
	"github.com/xavierca1/voyage-leads/internal/infra/integration/elevenlabs"
	"github.com/xavierca1/voyage-leads/internal/usecase"
)

const maxWebhookBody = 5 << 20

// WebhookHandler receives ElevenLabs post-call notifications.
type WebhookHandler struct {
	CaptureUC *usecase.CaptureCallLeadUseCase
	// Secret enables signature verification when non-empty.
	Secret string
	Logger *zap.Logger
	now    func() time.Time
}

func NewWebhookHandler(captureUC *usecase.CaptureCallLeadUseCase, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		CaptureUC: captureUC,
		Secret:    secret,
		Logger:    logger.Named("webhook"),
		now:       time.Now,
	}
}

type webhookAck struct {
	OK        bool `json:"ok"`
	Duplicate bool `json:"duplicate,omitempty"`
}

// Handle is mounted for every method; only POST is accepted.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST.", "")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Payload too large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error())
		return
	}

	if h.Secret != "" {
		if err := elevenlabs.VerifySignature(h.Secret, r.Header.Get(elevenlabs.SignatureHeader), body, h.now()); err != nil {
			h.Logger.Warn("rejected post-call webhook", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid_signature", err.Error())
			return
		}
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error())
		return
	}
	h.Logger.Debug("post-call payload received", zap.ByteString("body", body))

	// Any valid JSON is accepted; a non-object body normalizes like an empty one.
	payload, _ := raw.(map[string]any)
	if payload == nil {
		payload = elevenlabs.Payload{}
	}

	out, err := h.CaptureUC.Execute(r.Context(), payload)
	if err != nil {
		if errors.Is(err, entity.ErrStoreUnavailable) {
			h.Logger.Error("lead store unavailable", zap.Error(err))
			writeStoreUnavailable(w, err)
			return
		}
		h.Logger.Error("failed to store lead", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to store lead", "")
		return
	}

	writeJSON(w, http.StatusOK, webhookAck{OK: true, Duplicate: out.Duplicate})
}
