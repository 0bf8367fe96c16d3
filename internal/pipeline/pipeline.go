// Package pipeline orchestrates one audio chunk's trip through the
// service: decode, transcribe, classify, contextualize, generate,
// record. It owns the short-circuit rules between stages; transports
// (REST handlers, the WebSocket loop) stay thin on top of it.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/audio"
	"github.com/kmazur/interview-copilot/internal/metrics"
	"github.com/kmazur/interview-copilot/internal/models"
	"github.com/kmazur/interview-copilot/internal/prompt"
	"github.com/kmazur/interview-copilot/internal/question"
	"github.com/kmazur/interview-copilot/internal/services/generate"
	"github.com/kmazur/interview-copilot/internal/services/transcribe"
	"github.com/kmazur/interview-copilot/internal/store"
)

// Default sampling parameters applied when a caller does not supply
// explicit values.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// Result is the outcome of one blocking audio-processing call. Question
// and Answer are nil when the corresponding stage short-circuited.
type Result struct {
	Success       bool       `json:"success"`
	Transcription string     `json:"transcription,omitempty"`
	Question      *string    `json:"question,omitempty"`
	Answer        *string    `json:"answer,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
}

// Event is one outbound notification produced while processing an
// audio chunk in event mode. Types mirror the wire protocol:
// transcription, question_detected, answer, answer_chunk, answer_final.
type Event struct {
	Type string
	Text string
}

// Sink receives events in emission order. A non-nil error aborts the
// in-flight pipeline pass.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Options carries the per-deployment pipeline policy.
type Options struct {
	// Language is the transcription language hint, e.g. "pl".
	Language string
	// StreamAnswers selects chunked delivery in event mode.
	StreamAnswers bool
}

// Pipeline wires the stages together. All dependencies are injected;
// the zero value is not usable.
type Pipeline struct {
	engine     transcribe.Engine
	generator  generate.Generator
	classifier *question.Classifier
	store      store.Store
	metrics    *metrics.Metrics
	logger     *zap.Logger
	opts       Options
}

func New(engine transcribe.Engine, generator generate.Generator, classifier *question.Classifier, st store.Store, m *metrics.Metrics, logger *zap.Logger, opts Options) *Pipeline {
	if opts.Language == "" {
		opts.Language = "pl"
	}
	return &Pipeline{
		engine:     engine,
		generator:  generator,
		classifier: classifier,
		store:      st,
		metrics:    m,
		logger:     logger,
		opts:       opts,
	}
}

// Transcribe runs speech-to-text on a decoded buffer. An empty result
// with a nil error means no speech was detected.
func (p *Pipeline) Transcribe(ctx context.Context, buf audio.Buffer, language string) (string, error) {
	if language == "" {
		language = p.opts.Language
	}

	start := time.Now()
	text, err := p.engine.Transcribe(ctx, buf, language)
	elapsed := time.Since(start)

	p.metrics.TranscriptionCount.Inc()
	p.metrics.TranscriptionDuration.Observe(elapsed.Seconds())

	if err != nil {
		p.logger.Error("transcription_failed",
			zap.Error(err),
			zap.String("language", language),
			zap.Duration("elapsed", elapsed),
		)
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	p.logger.Debug("transcription_done",
		zap.Int("transcript_length", len(text)),
		zap.Duration("elapsed", elapsed),
	)
	return text, nil
}

// GenerateAnswer produces a complete answer for an explicit question
// and context, without touching the stores. Callers own persistence.
func (p *Pipeline) GenerateAnswer(ctx context.Context, q string, c models.Context, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := generate.Params{
		SystemPrompt: prompt.BuildSystemPrompt(c.CV, c.Company, c.Position, c.CustomSystemPrompt),
		UserPrompt:   prompt.BuildUserPrompt(q),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	}

	start := time.Now()
	answer, err := p.generator.Generate(ctx, params)
	elapsed := time.Since(start)

	p.metrics.GenerationCount.Inc()
	p.metrics.GenerationDuration.Observe(elapsed.Seconds())

	if err != nil {
		p.logger.Error("generation_failed",
			zap.Error(err),
			zap.String("model", p.generator.Model()),
			zap.Duration("elapsed", elapsed),
		)
		return "", err
	}

	p.logger.Debug("generation_done",
		zap.Int("answer_length", len(answer)),
		zap.Duration("elapsed", elapsed),
	)
	return answer, nil
}

// ProcessAudio runs the full blocking pipeline for one session. Stage
// short-circuits are success outcomes: an empty transcript yields a
// bare success, a non-question yields the transcript only, and an
// empty generated answer yields the question with no answer and no
// history write.
func (p *Pipeline) ProcessAudio(ctx context.Context, sessionKey string, buf audio.Buffer) (Result, error) {
	transcript, err := p.Transcribe(ctx, buf, p.opts.Language)
	if err != nil {
		return Result{}, err
	}
	if transcript == "" {
		return Result{Success: true}, nil
	}

	if !p.classifier.IsQuestion(transcript) {
		return Result{Success: true, Transcription: transcript}, nil
	}
	p.metrics.QuestionDetectedCount.Inc()
	p.logger.Info("question_detected",
		zap.String("session_key", sessionKey),
		zap.Int("question_length", len(transcript)),
	)

	interviewCtx, err := p.store.GetContext(ctx, sessionKey)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load context: %w", err)
	}

	answer, err := p.GenerateAnswer(ctx, transcript, interviewCtx, DefaultTemperature, DefaultMaxTokens)
	if err != nil {
		return Result{}, err
	}

	// The question path reports the text through the question field;
	// transcription is only set on the non-question branch.
	now := time.Now().UTC()
	result := Result{
		Success:   true,
		Question:  &transcript,
		Timestamp: &now,
	}
	if answer == "" {
		return result, nil
	}
	result.Answer = &answer

	entry := models.HistoryEntry{Question: transcript, Answer: answer, Timestamp: now}
	if err := p.store.AppendHistory(ctx, sessionKey, entry); err != nil {
		// The answer is already produced; losing the log line is
		// preferable to failing the request.
		p.logger.Error("history_append_failed",
			zap.Error(err),
			zap.String("session_key", sessionKey),
		)
	}
	return result, nil
}

// ProcessAudioEvents runs the same pipeline but delivers results as a
// sequence of events, for the WebSocket transport. Depending on
// StreamAnswers it emits either one answer event or answer_chunk
// events followed by answer_final. The final answer is recorded in
// history either way.
func (p *Pipeline) ProcessAudioEvents(ctx context.Context, sessionKey string, buf audio.Buffer, sink Sink) error {
	transcript, err := p.Transcribe(ctx, buf, p.opts.Language)
	if err != nil {
		return err
	}
	if transcript == "" {
		return nil
	}

	if err := sink.Emit(ctx, Event{Type: "transcription", Text: transcript}); err != nil {
		return fmt.Errorf("failed to emit transcription: %w", err)
	}

	if !p.classifier.IsQuestion(transcript) {
		return nil
	}
	p.metrics.QuestionDetectedCount.Inc()
	p.logger.Info("question_detected",
		zap.String("session_key", sessionKey),
		zap.Int("question_length", len(transcript)),
	)

	if err := sink.Emit(ctx, Event{Type: "question_detected", Text: transcript}); err != nil {
		return fmt.Errorf("failed to emit question: %w", err)
	}

	interviewCtx, err := p.store.GetContext(ctx, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to load context: %w", err)
	}

	var answer string
	if p.opts.StreamAnswers {
		answer, err = p.streamAnswer(ctx, transcript, interviewCtx, sink)
	} else {
		answer, err = p.GenerateAnswer(ctx, transcript, interviewCtx, DefaultTemperature, DefaultMaxTokens)
		if err == nil && answer != "" {
			err = sink.Emit(ctx, Event{Type: "answer", Text: answer})
		}
	}
	if err != nil {
		return err
	}
	if answer == "" {
		return nil
	}

	entry := models.HistoryEntry{Question: transcript, Answer: answer, Timestamp: time.Now().UTC()}
	if err := p.store.AppendHistory(ctx, sessionKey, entry); err != nil {
		p.logger.Error("history_append_failed",
			zap.Error(err),
			zap.String("session_key", sessionKey),
		)
	}
	return nil
}

// streamAnswer forwards deltas to the sink as they arrive and returns
// the accumulated answer once the producer finishes.
func (p *Pipeline) streamAnswer(ctx context.Context, q string, c models.Context, sink Sink) (string, error) {
	params := generate.Params{
		SystemPrompt: prompt.BuildSystemPrompt(c.CV, c.Company, c.Position, c.CustomSystemPrompt),
		UserPrompt:   prompt.BuildUserPrompt(q),
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
	}

	start := time.Now()
	deltas, errs := p.generator.GenerateStream(ctx, params)

	var b strings.Builder
	for delta := range deltas {
		if err := sink.Emit(ctx, Event{Type: "answer_chunk", Text: delta}); err != nil {
			return "", fmt.Errorf("failed to emit answer chunk: %w", err)
		}
		b.WriteString(delta)
	}
	err := <-errs
	elapsed := time.Since(start)

	p.metrics.GenerationCount.Inc()
	p.metrics.GenerationDuration.Observe(elapsed.Seconds())

	if err != nil {
		p.logger.Error("generation_failed",
			zap.Error(err),
			zap.String("model", p.generator.Model()),
			zap.Duration("elapsed", elapsed),
		)
		return "", err
	}

	answer := b.String()
	if answer != "" {
		if err := sink.Emit(ctx, Event{Type: "answer_final", Text: answer}); err != nil {
			return "", fmt.Errorf("failed to emit final answer: %w", err)
		}
	}
	return answer, nil
}
