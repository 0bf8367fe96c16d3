package generate

import (
	"errors"
	"fmt"
	"strings"
)

// GenerationError wraps an upstream model failure. It is never
// converted into a fabricated answer: the orchestrator either surfaces
// it as a user-visible failure or the caller applies its own policy.
type GenerationError struct {
	Operation string
	Model     string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s, model %s): %v", e.Operation, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsRateLimited reports whether the upstream rejected the call for rate
// or quota reasons. The SDK surfaces these inside the error text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "insufficient_quota")
}
