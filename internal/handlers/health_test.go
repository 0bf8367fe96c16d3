package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		generator  *fakeGenerator
		pinger     Pinger
		wantStatus string
	}{
		{
			name:       "all dependencies up",
			generator:  &fakeGenerator{healthy: true},
			pinger:     &fakePinger{},
			wantStatus: "healthy",
		},
		{
			name:       "generator unreachable",
			generator:  &fakeGenerator{healthy: false},
			pinger:     &fakePinger{},
			wantStatus: "degraded",
		},
		{
			name:       "store unreachable",
			generator:  &fakeGenerator{healthy: true},
			pinger:     &fakePinger{err: errors.New("connection refused")},
			wantStatus: "unhealthy",
		},
		{
			name:       "no durable store configured",
			generator:  &fakeGenerator{healthy: true},
			pinger:     nil,
			wantStatus: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHealthHandler(tt.generator, tt.pinger, "default", zap.NewNop())

			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest("GET", "/api/health", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status code = %d, want 200", w.Code)
			}

			var resp HealthResponse
			decodeBody(t, w, &resp)
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.GenerationModel != "fake-model" || resp.TranscriptionModel != "default" {
				t.Errorf("models = %q/%q", resp.GenerationModel, resp.TranscriptionModel)
			}
			if resp.Version != Version || resp.Timestamp == "" {
				t.Errorf("version/timestamp = %q/%q", resp.Version, resp.Timestamp)
			}
		})
	}
}
