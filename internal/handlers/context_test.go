package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/auth"
	"github.com/kmazur/interview-copilot/internal/models"
	"github.com/kmazur/interview-copilot/internal/request"
	"github.com/kmazur/interview-copilot/internal/store"
)

func requestAs(method, target, body string, p auth.Principal) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	return r.WithContext(request.WithPrincipal(r.Context(), p))
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore(0)
	h := NewContextHandler(st, zap.NewNop())

	// Empty read on a fresh session.
	w := httptest.NewRecorder()
	h.Get(w, requestAs("GET", "/api/context", "", auth.Anonymous))
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var c models.Context
	decodeBody(t, w, &c)
	if c != (models.Context{}) {
		t.Errorf("fresh context = %+v, want empty", c)
	}

	// Write, then read back.
	body := `{"cv": "Moje CV", "company": "Initech", "position": "Dev", "custom_system_prompt": "Bądź zwięzły."}`
	w = httptest.NewRecorder()
	h.Update(w, requestAs("POST", "/api/context", body, auth.Anonymous))
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Get(w, requestAs("GET", "/api/context", "", auth.Anonymous))
	decodeBody(t, w, &c)
	want := models.Context{CV: "Moje CV", Company: "Initech", Position: "Dev", CustomSystemPrompt: "Bądź zwięzły."}
	if c != want {
		t.Errorf("context = %+v, want %+v", c, want)
	}
}

func TestContextUpdateSanitizesFields(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore(0)
	h := NewContextHandler(st, zap.NewNop())

	// Control characters are stripped and surrounding whitespace
	// trimmed before the context is stored; embedded newlines survive.
	body := `{"cv": "  Moje CV\nDruga linia  ", "company": " Ini\u0007tech ", "position": "\tDev", "custom_system_prompt": "Bądź\u001b zwięzły."}`
	w := httptest.NewRecorder()
	h.Update(w, requestAs("POST", "/api/context", body, auth.Anonymous))
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", w.Code, w.Body.String())
	}

	stored, err := st.GetContext(context.Background(), auth.AnonymousSessionKey)
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	want := models.Context{
		CV:                 "Moje CV\nDruga linia",
		Company:            "Initech",
		Position:           "Dev",
		CustomSystemPrompt: "Bądź zwięzły.",
	}
	if stored != want {
		t.Errorf("stored context = %+v, want %+v", stored, want)
	}
}

func TestContextScopedPerSession(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore(0)
	h := NewContextHandler(st, zap.NewNop())
	userA := auth.Principal{Authenticated: true, UserID: "user-a", Email: "a@example.com"}
	userB := auth.Principal{Authenticated: true, UserID: "user-b", Email: "b@example.com"}

	w := httptest.NewRecorder()
	h.Update(w, requestAs("POST", "/api/context", `{"cv": "CV A"}`, userA))
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d", w.Code)
	}

	// The other session still reads an empty context.
	w = httptest.NewRecorder()
	h.Get(w, requestAs("GET", "/api/context", "", userB))
	var c models.Context
	decodeBody(t, w, &c)
	if c != (models.Context{}) {
		t.Errorf("user B context = %+v, want empty", c)
	}

	stored, err := st.GetContext(context.Background(), "user-a")
	if err != nil || stored.CV != "CV A" {
		t.Errorf("user A stored context = %+v, err %v", stored, err)
	}
}
