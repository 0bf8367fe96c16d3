// Package transcribe defines the speech-to-text contract the pipeline
// depends on, plus the Google Cloud Speech implementation.
package transcribe

import (
	"context"

	"github.com/kmazur/interview-copilot/internal/audio"
)

// Engine converts a normalized sample buffer into text. An empty
// transcript with a nil error means no speech was detected; that is a
// valid outcome, not a failure.
type Engine interface {
	Transcribe(ctx context.Context, buf audio.Buffer, language string) (string, error)
}
