package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/auth"
	"github.com/kmazur/interview-copilot/internal/pipeline"
)

func dialWS(t *testing.T, f *fixture, requireAuth bool, query string) *websocket.Conn {
	t.Helper()

	authSvc := auth.NewService(f.store, "test-secret", time.Hour)
	h := NewWSHandler(f.pipeline, authSvc, f.store, f.metrics, zap.NewNop(), requireAuth, 16000)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/audio" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event map[string]any
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}

func TestWSPingPong(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	conn := dialWS(t, f, false, "")

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	event := readEvent(t, conn)
	if event["type"] != "pong" {
		t.Errorf("event = %+v, want pong", event)
	}
}

func TestWSUnknownTypeIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	conn := dialWS(t, f, false, "")

	// An unknown type and a malformed frame produce no events; the
	// following ping still gets its pong.
	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	event := readEvent(t, conn)
	if event["type"] != "pong" {
		t.Errorf("event = %+v, want pong", event)
	}
}

func TestWSContextUpdate(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	conn := dialWS(t, f, false, "")

	msg := map[string]any{
		"type": "context",
		"data": map[string]any{"cv": "Moje CV", "company": " Ini\u0007tech ", "position": "Dev"},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	event := readEvent(t, conn)
	if event["type"] != "status" || event["message"] != "Context updated" {
		t.Errorf("event = %+v", event)
	}

	// Fields are sanitized on the way in, same as the REST update.
	stored, err := f.store.GetContext(context.Background(), "default")
	if err != nil || stored.Company != "Initech" {
		t.Errorf("stored context = %+v, err %v", stored, err)
	}
}

func TestWSAudioBlockingFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.engine.transcript = "What motivates you?"
	f.generator.answer = "Rozwiązywanie trudnych problemów."
	conn := dialWS(t, f, false, "")

	if err := conn.WriteJSON(map[string]any{"type": "audio", "data": []float32{0.1, -0.2}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	event := readEvent(t, conn)
	if event["type"] != "transcription" || event["text"] != "What motivates you?" {
		t.Fatalf("first event = %+v", event)
	}
	event = readEvent(t, conn)
	if event["type"] != "question_detected" || event["question"] != "What motivates you?" {
		t.Fatalf("second event = %+v", event)
	}
	event = readEvent(t, conn)
	if event["type"] != "answer" || event["answer"] != "Rozwiązywanie trudnych problemów." {
		t.Fatalf("third event = %+v", event)
	}
}

func TestWSAudioStreamingFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{StreamAnswers: true})
	f.engine.transcript = "Why this company?"
	f.generator.deltas = []string{"Bo ", "lubię ", "wyzwania."}
	conn := dialWS(t, f, false, "")

	if err := conn.WriteJSON(map[string]any{"type": "audio", "data": []float32{0.1}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if event := readEvent(t, conn); event["type"] != "transcription" {
		t.Fatalf("first event = %+v", event)
	}
	if event := readEvent(t, conn); event["type"] != "question_detected" {
		t.Fatalf("second event = %+v", event)
	}
	var got strings.Builder
	for i := 0; i < 3; i++ {
		event := readEvent(t, conn)
		if event["type"] != "answer_chunk" {
			t.Fatalf("chunk %d = %+v", i, event)
		}
		got.WriteString(event["text"].(string))
	}
	event := readEvent(t, conn)
	if event["type"] != "answer_final" || event["answer"] != "Bo lubię wyzwania." {
		t.Fatalf("final event = %+v", event)
	}
	if got.String() != "Bo lubię wyzwania." {
		t.Errorf("accumulated chunks = %q", got.String())
	}
}

func TestWSNonQuestionEmitsTranscriptionOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.engine.transcript = "I enjoy hiking."
	conn := dialWS(t, f, false, "")

	if err := conn.WriteJSON(map[string]any{"type": "audio", "data": []float32{0.1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if event := readEvent(t, conn); event["type"] != "transcription" {
		t.Fatalf("event = %+v", event)
	}

	// Only the transcription arrives; a ping proves the loop is idle.
	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if event := readEvent(t, conn); event["type"] != "pong" {
		t.Errorf("event = %+v, want pong", event)
	}
}

func TestWSAuthRequired(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	conn := dialWS(t, f, true, "")

	event := readEvent(t, conn)
	if event["type"] != "error" {
		t.Fatalf("event = %+v, want error", event)
	}

	// The server then closes with a policy violation.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Errorf("close error = %v, want policy violation", err)
	}
}

func TestWSAuthTokenQueryParam(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	authSvc := auth.NewService(f.store, "test-secret", time.Hour)
	if _, err := authSvc.Register(context.Background(), "jan@example.com", "s3cret-pass", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := authSvc.Login(context.Background(), "jan@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	conn := dialWS(t, f, true, "?token="+token)

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if event := readEvent(t, conn); event["type"] != "pong" {
		t.Errorf("event = %+v, want pong", event)
	}
}
