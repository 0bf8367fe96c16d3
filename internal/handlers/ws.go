package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/audio"
	"github.com/kmazur/interview-copilot/internal/auth"
	"github.com/kmazur/interview-copilot/internal/metrics"
	"github.com/kmazur/interview-copilot/internal/models"
	"github.com/kmazur/interview-copilot/internal/pipeline"
	"github.com/kmazur/interview-copilot/internal/store"
	"github.com/kmazur/interview-copilot/internal/validation"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// WSHandler runs the stateful audio-streaming loop on /ws/audio.
type WSHandler struct {
	pipeline    *pipeline.Pipeline
	authSvc     *auth.Service
	store       store.ContextStore
	metrics     *metrics.Metrics
	logger      *zap.Logger
	requireAuth bool
	sampleRate  int
	upgrader    websocket.Upgrader
}

func NewWSHandler(p *pipeline.Pipeline, authSvc *auth.Service, st store.ContextStore, m *metrics.Metrics, logger *zap.Logger, requireAuth bool, sampleRate int) *WSHandler {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &WSHandler{
		pipeline:    p,
		authSvc:     authSvc,
		store:       st,
		metrics:     m,
		logger:      logger,
		requireAuth: requireAuth,
		sampleRate:  sampleRate,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type wsInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleWS handles GET /ws/audio. Credentials come from the
// Authorization header or a token query parameter, since browser
// WebSocket clients cannot set headers.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		authorization = r.URL.Query().Get("token")
	}
	principal, _ := h.authSvc.Resolve(authorization)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket_upgrade_failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.requireAuth && !principal.Authenticated {
		h.writeJSON(conn, map[string]any{"type": "error", "message": "Authentication required"})
		deadline := time.Now().Add(wsWriteTimeout)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication required")
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		return
	}

	sessionKey := principal.SessionKey()
	h.logger.Info("websocket_connected", zap.String("session_key", sessionKey))
	h.metrics.ActiveSessions.Inc()
	defer func() {
		h.metrics.ActiveSessions.Dec()
		h.logger.Info("websocket_closed", zap.String("session_key", sessionKey))
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})
	go h.pingLoop(ctx, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket_read_failed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg wsInbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed frames are ignored, not fatal.
			continue
		}

		if !h.handleMessage(ctx, conn, sessionKey, &msg) {
			return
		}
	}
}

// handleMessage dispatches one inbound frame. It reports false when
// the connection must close.
func (h *WSHandler) handleMessage(ctx context.Context, conn *websocket.Conn, sessionKey string, msg *wsInbound) bool {
	switch msg.Type {
	case "audio":
		return h.handleAudio(ctx, conn, sessionKey, msg.Data)
	case "context":
		return h.handleContext(ctx, conn, sessionKey, msg.Data)
	case "ping":
		return h.writeJSON(conn, map[string]any{"type": "pong"})
	default:
		// Unrecognized types are ignored.
		return true
	}
}

func (h *WSHandler) handleAudio(ctx context.Context, conn *websocket.Conn, sessionKey string, data json.RawMessage) bool {
	var samples []float32
	if err := json.Unmarshal(data, &samples); err != nil {
		return true
	}

	decoded, err := audio.FromSamples(samples)
	if err != nil {
		h.metrics.RecordError("decode_error", "/ws/audio")
		return h.writeJSON(conn, map[string]any{"type": "error", "message": "Invalid audio payload"})
	}
	buf := audio.Buffer{Samples: audio.Normalize(decoded), SampleRate: h.sampleRate}

	sink := &wsSink{handler: h, conn: conn}
	if err := h.pipeline.ProcessAudioEvents(ctx, sessionKey, buf, sink); err != nil {
		h.metrics.RecordError("processing_error", "/ws/audio")
		h.logger.Error("websocket_processing_failed",
			zap.Error(err),
			zap.String("session_key", sessionKey),
		)
		// Best-effort notification, then close.
		h.writeJSON(conn, map[string]any{"type": "error", "message": "Audio processing failed"})
		return false
	}
	return true
}

func (h *WSHandler) handleContext(ctx context.Context, conn *websocket.Conn, sessionKey string, data json.RawMessage) bool {
	var c models.Context
	if err := json.Unmarshal(data, &c); err != nil {
		return true
	}

	c.CV = validation.SanitizeText(c.CV)
	c.Company = validation.SanitizeText(c.Company)
	c.Position = validation.SanitizeText(c.Position)
	c.CustomSystemPrompt = validation.SanitizeText(c.CustomSystemPrompt)

	if err := h.store.SetContext(ctx, sessionKey, c); err != nil {
		h.logger.Error("websocket_context_write_failed",
			zap.Error(err),
			zap.String("session_key", sessionKey),
		)
		h.writeJSON(conn, map[string]any{"type": "error", "message": "Failed to update context"})
		return false
	}
	return h.writeJSON(conn, map[string]any{"type": "status", "message": "Context updated"})
}

func (h *WSHandler) writeJSON(conn *websocket.Conn, payload any) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		h.logger.Warn("websocket_write_failed", zap.Error(err))
		return false
	}
	return true
}

func (h *WSHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// wsSink adapts pipeline events onto the outbound frame protocol.
type wsSink struct {
	handler *WSHandler
	conn    *websocket.Conn
}

func (s *wsSink) Emit(_ context.Context, event pipeline.Event) error {
	var payload map[string]any
	switch event.Type {
	case "transcription":
		payload = map[string]any{"type": "transcription", "text": event.Text}
	case "question_detected":
		payload = map[string]any{"type": "question_detected", "question": event.Text}
	case "answer":
		payload = map[string]any{"type": "answer", "answer": event.Text}
	case "answer_chunk":
		payload = map[string]any{"type": "answer_chunk", "text": event.Text}
	case "answer_final":
		payload = map[string]any{"type": "answer_final", "answer": event.Text}
	default:
		return nil
	}

	s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteJSON(payload)
}
