package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/logger"
	"github.com/kmazur/interview-copilot/internal/models"
	"github.com/kmazur/interview-copilot/internal/request"
	"github.com/kmazur/interview-copilot/internal/store"
	"github.com/kmazur/interview-copilot/internal/validation"
)

// ContextHandler serves the per-session interview context.
type ContextHandler struct {
	store  store.ContextStore
	logger *zap.Logger
}

func NewContextHandler(st store.ContextStore, logger *zap.Logger) *ContextHandler {
	return &ContextHandler{store: st, logger: logger}
}

// Get handles GET /api/context. An unknown session yields the empty
// context, never an error.
func (h *ContextHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionKey := request.PrincipalFromContext(r.Context()).SessionKey()

	c, err := h.store.GetContext(r.Context(), sessionKey)
	if err != nil {
		h.logger.Error("context_read_failed", zap.Error(err), zap.String("session_key", sessionKey))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to read context")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// Update handles POST /api/context, replacing the stored context
// wholesale.
func (h *ContextHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.Context
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.CV = validation.SanitizeText(req.CV)
	req.Company = validation.SanitizeText(req.Company)
	req.Position = validation.SanitizeText(req.Position)
	req.CustomSystemPrompt = validation.SanitizeText(req.CustomSystemPrompt)

	sessionKey := request.PrincipalFromContext(r.Context()).SessionKey()
	if err := h.store.SetContext(r.Context(), sessionKey, req); err != nil {
		h.logger.Error("context_write_failed", zap.Error(err), zap.String("session_key", sessionKey))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update context")
		return
	}

	h.logger.Info("context_updated",
		zap.String("session_key", sessionKey),
		zap.String("company", logger.SanitizeString(req.Company, 0)),
		zap.String("position", logger.SanitizeString(req.Position, 0)),
	)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Context updated"})
}
