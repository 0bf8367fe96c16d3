// Package generate defines the answer-generation contract the pipeline
// depends on, plus the OpenAI implementation.
package generate

import "context"

// Params bound one generation call.
type Params struct {
	SystemPrompt string
	UserPrompt   string
	// Temperature in [0.0, 2.0].
	Temperature float64
	// MaxTokens caps output length; positive.
	MaxTokens int
}

// Generator produces interview answers. Implementations must be safe
// for concurrent use.
type Generator interface {
	// Generate returns the complete answer text. Failures are
	// reported as a *GenerationError; an empty answer with a nil
	// error is a tolerated outcome, distinct from failure.
	Generate(ctx context.Context, p Params) (string, error)

	// GenerateStream returns a lazy, finite, non-restartable
	// sequence of text deltas on the first channel. Whitespace-only
	// deltas are filtered out. The delta channel is closed on normal
	// completion; a single error (or nil) is then delivered on the
	// second channel. The channels are bounded, so an abandoned
	// consumer eventually blocks the producer, which exits when ctx
	// is cancelled.
	GenerateStream(ctx context.Context, p Params) (<-chan string, <-chan error)

	// Healthcheck proves end-to-end reachability with a trivial
	// generation. Never called on the hot path.
	Healthcheck(ctx context.Context) error

	// Model identifies the configured model for the health surface.
	Model() string
}
