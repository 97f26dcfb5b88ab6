package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Message: detail})
}

// writeStoreUnavailable answers 503 for both an unconfigured and an
// unreachable store, keeping the two apart in the body.
func writeStoreUnavailable(w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrStoreNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "Lead store not configured",
			"Set STORE_POSTGRES_URL (or DATABASE_URL) or switch store.driver to mongo with MONGODB_URI.")
		return
	}
	writeError(w, http.StatusServiceUnavailable, "Lead store unavailable", "The lead store cannot be reached. Try again later.")
}
