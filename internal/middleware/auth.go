package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/auth"
	"github.com/kmazur/interview-copilot/internal/request"
)

// ErrorResponse is the JSON body every middleware failure uses.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// Auth resolves the Authorization header exactly once per request and
// stores the resulting principal in the request context. When required
// is true, unauthenticated requests are rejected with 401; otherwise
// they proceed as the anonymous principal.
func Auth(svc *auth.Service, required bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := svc.Resolve(r.Header.Get("Authorization"))
			if required && !principal.Authenticated {
				logger.Debug("auth_rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing or invalid credentials", logger)
				return
			}

			ctx := request.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// respondErrorJSON sends a uniform error JSON response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, errorType, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", r.URL.Path),
		)
	}
}
