package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/audio"
)

// GoogleEngine transcribes audio with the Google Cloud Speech API.
// Authentication uses Application Default Credentials.
type GoogleEngine struct {
	client          *speech.Client
	model           string
	defaultLanguage string
	logger          *zap.Logger
}

var _ Engine = (*GoogleEngine)(nil)

// NewGoogleEngine creates a speech client. model selects the
// recognition model ("default", "latest_long", ...); defaultLanguage is
// used when a request carries no language hint.
func NewGoogleEngine(ctx context.Context, model, defaultLanguage string, logger *zap.Logger) (*GoogleEngine, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleEngine{
		client:          client,
		model:           model,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}, nil
}

// Close releases the underlying gRPC connection.
func (e *GoogleEngine) Close() error {
	return e.client.Close()
}

// Transcribe runs synchronous recognition over the buffer. Samples are
// converted to LINEAR16 at the buffer's declared sample rate; the rate
// is trusted metadata and not validated against the actual capture.
func (e *GoogleEngine) Transcribe(ctx context.Context, buf audio.Buffer, language string) (string, error) {
	if language == "" {
		language = e.defaultLanguage
	}
	languageCode := languageToCode(language)

	start := time.Now()
	resp, err := e.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(buf.SampleRate),
			LanguageCode:    languageCode,
			Model:           e.model,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audio.PCM16(buf.Samples),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}

	var b strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			b.WriteString(result.Alternatives[0].Transcript)
		}
	}
	text := strings.TrimSpace(b.String())

	e.logger.Debug("transcription_complete",
		zap.Int("samples", len(buf.Samples)),
		zap.Int("sample_rate", buf.SampleRate),
		zap.String("language", languageCode),
		zap.Int("transcript_length", len(text)),
		zap.Int64("latency_ms", time.Since(start).Milliseconds()),
	)

	return text, nil
}

// languageToCode widens bare language hints ("pl", "en") into BCP-47
// codes the recognition API expects. Full codes pass through untouched.
func languageToCode(language string) string {
	if strings.Contains(language, "-") {
		return language
	}
	switch strings.ToLower(language) {
	case "pl":
		return "pl-PL"
	case "en":
		return "en-US"
	case "de":
		return "de-DE"
	default:
		return language
	}
}
