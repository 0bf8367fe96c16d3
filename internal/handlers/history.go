package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/request"
	"github.com/kmazur/interview-copilot/internal/store"
)

// DefaultHistoryLimit caps list responses when the client does not ask
// for a specific page size.
const DefaultHistoryLimit = 100

// HistoryHandler serves the per-session question/answer log.
type HistoryHandler struct {
	store  store.HistoryStore
	logger *zap.Logger
}

func NewHistoryHandler(st store.HistoryStore, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: st, logger: logger}
}

// List handles GET /api/history. Entries come back newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	sessionKey := request.PrincipalFromContext(r.Context()).SessionKey()
	entries, err := h.store.GetHistory(r.Context(), sessionKey, limit)
	if err != nil {
		h.logger.Error("history_read_failed", zap.Error(err), zap.String("session_key", sessionKey))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to read history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "history": entries})
}

// Clear handles DELETE /api/history.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionKey := request.PrincipalFromContext(r.Context()).SessionKey()

	deleted, err := h.store.ClearHistory(r.Context(), sessionKey)
	if err != nil {
		h.logger.Error("history_clear_failed", zap.Error(err), zap.String("session_key", sessionKey))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear history")
		return
	}

	h.logger.Info("history_cleared",
		zap.String("session_key", sessionKey),
		zap.Int("deleted", deleted),
	)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}
