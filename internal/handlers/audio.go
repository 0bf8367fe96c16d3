package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/audio"
	"github.com/kmazur/interview-copilot/internal/metrics"
	"github.com/kmazur/interview-copilot/internal/models"
	"github.com/kmazur/interview-copilot/internal/pipeline"
	"github.com/kmazur/interview-copilot/internal/request"
	"github.com/kmazur/interview-copilot/internal/services/generate"
	"github.com/kmazur/interview-copilot/internal/validation"
)

// MaxAudioSamples bounds one process_audio payload.
const MaxAudioSamples = 1_000_000

// AudioHandler serves the three synchronous pipeline endpoints.
type AudioHandler struct {
	pipeline          *pipeline.Pipeline
	metrics           *metrics.Metrics
	logger            *zap.Logger
	defaultLanguage   string
	defaultSampleRate int
}

func NewAudioHandler(p *pipeline.Pipeline, m *metrics.Metrics, logger *zap.Logger, defaultLanguage string, defaultSampleRate int) *AudioHandler {
	if defaultLanguage == "" {
		defaultLanguage = "pl"
	}
	if defaultSampleRate <= 0 {
		defaultSampleRate = 16000
	}
	return &AudioHandler{
		pipeline:          p,
		metrics:           m,
		logger:            logger,
		defaultLanguage:   defaultLanguage,
		defaultSampleRate: defaultSampleRate,
	}
}

// TranscribeRequest carries base64-encoded little-endian float32 audio.
type TranscribeRequest struct {
	Audio    string `json:"audio" validate:"required"`
	Language string `json:"language"`
}

// TranscribeResponse mirrors the transcription wire contract.
type TranscribeResponse struct {
	Text      string `json:"text"`
	Language  string `json:"language"`
	Timestamp string `json:"timestamp"`
}

// Transcribe handles POST /api/transcribe.
func (h *AudioHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	if req.Language == "" {
		req.Language = h.defaultLanguage
	}

	samples, err := audio.DecodeBase64(req.Audio)
	if err != nil {
		h.metrics.RecordError("decode_error", "/api/transcribe")
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	buf := audio.Buffer{Samples: audio.Normalize(samples), SampleRate: h.defaultSampleRate}
	text, err := h.pipeline.Transcribe(r.Context(), buf, req.Language)
	if err != nil {
		h.metrics.RecordError("transcription_error", "/api/transcribe")
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Transcription failed")
		return
	}
	if text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Failed to transcribe audio")
		return
	}

	respondJSON(w, http.StatusOK, TranscribeResponse{
		Text:      text,
		Language:  req.Language,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// GenerateRequest carries an explicit question plus inline context.
type GenerateRequest struct {
	Question    string         `json:"question" validate:"required"`
	Context     models.Context `json:"context"`
	Temperature *float64       `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int           `json:"max_tokens" validate:"omitempty,gte=1,lte=2000"`
}

// GenerateResponse mirrors the generation wire contract.
type GenerateResponse struct {
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// Generate handles POST /api/generate.
func (h *AudioHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	// Sanitizing before validation lets a whitespace-only question
	// fail the required check.
	req.Question = validation.SanitizeText(req.Question)
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	temperature := pipeline.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := pipeline.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	answer, err := h.pipeline.GenerateAnswer(r.Context(), req.Question, req.Context, temperature, maxTokens)
	if err != nil {
		h.metrics.RecordError("generation_error", "/api/generate")
		status := http.StatusInternalServerError
		if generate.IsRateLimited(err) {
			status = http.StatusTooManyRequests
		}
		respondJSONError(w, status, http.StatusText(status), "Generation failed")
		return
	}
	if answer == "" {
		h.metrics.RecordError("generation_error", "/api/generate")
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to generate answer")
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Answer:    answer,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ProcessAudioRequest carries raw float samples from the capture client.
type ProcessAudioRequest struct {
	Audio      []float32 `json:"audio" validate:"required,min=1,max=1000000"`
	SampleRate int       `json:"sampleRate" validate:"omitempty,gte=8000,lte=48000"`
}

// ProcessAudio handles POST /api/process_audio.
func (h *AudioHandler) ProcessAudio(w http.ResponseWriter, r *http.Request) {
	var req ProcessAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	if req.SampleRate == 0 {
		req.SampleRate = h.defaultSampleRate
	}

	samples, err := audio.FromSamples(req.Audio)
	if err != nil {
		h.metrics.RecordError("decode_error", "/api/process_audio")
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	buf := audio.Buffer{Samples: audio.Normalize(samples), SampleRate: req.SampleRate}

	sessionKey := request.PrincipalFromContext(r.Context()).SessionKey()
	result, err := h.pipeline.ProcessAudio(r.Context(), sessionKey, buf)
	if err != nil {
		errorType := "processing_error"
		if generate.IsGenerationError(err) {
			errorType = "generation_error"
		}
		h.metrics.RecordError(errorType, "/api/process_audio")
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Audio processing failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// respondValidationError reports the first failed field, matching the
// 422-class contract for bounds violations.
func respondValidationError(w http.ResponseWriter, err error) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Validation failed: "+fieldErrors[0].Error())
		return
	}
	respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Validation failed")
}
