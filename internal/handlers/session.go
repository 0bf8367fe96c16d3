package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/metrics"
	"github.com/kmazur/interview-copilot/internal/request"
)

// SessionHandler tracks explicit interview session boundaries. The
// endpoints exist for capture clients that want a clear start/stop
// signal; the only server-side effect is the active-session gauge.
type SessionHandler struct {
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewSessionHandler(m *metrics.Metrics, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{metrics: m, logger: logger}
}

// Start handles POST /api/start.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.metrics.ActiveSessions.Inc()
	h.logger.Info("session_started",
		zap.String("session_key", request.PrincipalFromContext(r.Context()).SessionKey()),
	)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Session started"})
}

// Stop handles POST /api/stop.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.metrics.ActiveSessions.Dec()
	h.logger.Info("session_stopped",
		zap.String("session_key", request.PrincipalFromContext(r.Context()).SessionKey()),
	)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Session stopped"})
}

// Root handles GET /, a small service banner.
func Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Interview Copilot API",
		"version": Version,
		"health":  "/api/health",
	})
}
