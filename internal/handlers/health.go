package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/services/generate"
)

// Version identifies the API surface.
const Version = "2.0.0"

// Pinger is satisfied by durable stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service readiness: healthy when the generator
// responds, degraded when it does not, unhealthy when the durable
// store is unreachable.
type HealthHandler struct {
	generator          generate.Generator
	pinger             Pinger
	transcriptionModel string
	logger             *zap.Logger
}

// NewHealthHandler builds the health surface. pinger may be nil when
// running on the in-process store.
func NewHealthHandler(generator generate.Generator, pinger Pinger, transcriptionModel string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		generator:          generator,
		pinger:             pinger,
		transcriptionModel: transcriptionModel,
		logger:             logger,
	}
}

// HealthResponse mirrors the health wire contract.
type HealthResponse struct {
	Status             string `json:"status"`
	Version            string `json:"version"`
	GenerationModel    string `json:"generation_model"`
	TranscriptionModel string `json:"transcription_model"`
	Timestamp          string `json:"timestamp"`
}

// HealthCheck handles GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "healthy"
	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("health_store_unreachable", zap.Error(err))
			status = "unhealthy"
		}
	}
	if status == "healthy" {
		if err := h.generator.Healthcheck(ctx); err != nil {
			h.logger.Warn("health_generator_unreachable", zap.Error(err))
			status = "degraded"
		}
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:             status,
		Version:            Version,
		GenerationModel:    h.generator.Model(),
		TranscriptionModel: h.transcriptionModel,
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
	})
}
