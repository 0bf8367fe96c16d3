package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/audio"
	"github.com/kmazur/interview-copilot/internal/metrics"
	"github.com/kmazur/interview-copilot/internal/pipeline"
	"github.com/kmazur/interview-copilot/internal/question"
	"github.com/kmazur/interview-copilot/internal/services/generate"
	"github.com/kmazur/interview-copilot/internal/store"
)

type fakeEngine struct {
	transcript string
	err        error
}

func (f *fakeEngine) Transcribe(_ context.Context, _ audio.Buffer, _ string) (string, error) {
	return f.transcript, f.err
}

type fakeGenerator struct {
	answer   string
	deltas   []string
	err      error
	healthy  bool
	lastUser string
}

func (f *fakeGenerator) Generate(_ context.Context, p generate.Params) (string, error) {
	f.lastUser = p.UserPrompt
	return f.answer, f.err
}

func (f *fakeGenerator) GenerateStream(_ context.Context, p generate.Params) (<-chan string, <-chan error) {
	f.lastUser = p.UserPrompt
	out := make(chan string, len(f.deltas)+1)
	errc := make(chan error, 1)
	for _, d := range f.deltas {
		out <- d
	}
	close(out)
	errc <- f.err
	return out, errc
}

func (f *fakeGenerator) Healthcheck(context.Context) error {
	if f.healthy {
		return nil
	}
	return &generate.GenerationError{Operation: "healthcheck", Model: f.Model(), Err: context.DeadlineExceeded}
}

func (f *fakeGenerator) Model() string { return "fake-model" }

type fixture struct {
	store     *store.MemoryStore
	engine    *fakeEngine
	generator *fakeGenerator
	metrics   *metrics.Metrics
	pipeline  *pipeline.Pipeline
}

func newFixture(opts pipeline.Options) *fixture {
	f := &fixture{
		store:     store.NewMemoryStore(0),
		engine:    &fakeEngine{},
		generator: &fakeGenerator{healthy: true},
		metrics:   metrics.New(),
	}
	f.pipeline = pipeline.New(f.engine, f.generator, question.New(nil, 0), f.store, f.metrics, zap.NewNop(), opts)
	return f
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(into); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}
