package generate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultModel is used when no generation model is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds one blocking API call.
	DefaultTimeout = 60 * time.Second
	// streamBuffer bounds the delta channel so a slow consumer
	// backpressures the producer instead of buffering model output.
	streamBuffer = 16
)

// OpenAIGenerator implements Generator against the OpenAI chat
// completions API (or any compatible endpoint via base URL override).
type OpenAIGenerator struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a generator. An empty model or baseURL
// falls back to the defaults.
func NewOpenAIGenerator(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIGenerator {
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIGenerator{
		client:    openai.NewClient(opts...),
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Model returns the configured model identifier.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

func (g *OpenAIGenerator) requestParams(p Params) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.SystemPrompt),
			openai.UserMessage(p.UserPrompt),
		},
		Temperature: openai.Float(p.Temperature),
		MaxTokens:   openai.Int(int64(p.MaxTokens)),
	}
}

// Generate performs one blocking completion call.
func (g *OpenAIGenerator) Generate(ctx context.Context, p Params) (string, error) {
	if g.debugMode {
		g.logger.Debug("llm_api_request",
			zap.String("operation", "generate"),
			zap.String("model", g.model),
			zap.Int("system_prompt_length", len(p.SystemPrompt)),
			zap.Int("user_prompt_length", len(p.UserPrompt)),
			zap.Float64("temperature", p.Temperature),
			zap.Int("max_tokens", p.MaxTokens),
		)
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, g.requestParams(p))
	latency := time.Since(start)

	if err != nil {
		g.logger.Warn("llm_api_error",
			zap.String("operation", "generate"),
			zap.String("model", g.model),
			zap.Error(err),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		return "", &GenerationError{Operation: "generate", Model: g.model, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Operation: "generate", Model: g.model, Err: errors.New("no choices in response")}
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)

	if g.debugMode {
		g.logger.Debug("llm_api_response",
			zap.String("operation", "generate"),
			zap.String("model", g.model),
			zap.Int("response_length", len(answer)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return answer, nil
}

// GenerateStream starts a streaming completion. Deltas flow through a
// bounded channel; the producer goroutine exits on completion, stream
// error, or context cancellation.
func (g *OpenAIGenerator) GenerateStream(ctx context.Context, p Params) (<-chan string, <-chan error) {
	deltas := make(chan string, streamBuffer)
	errc := make(chan error, 1)

	go func() {
		defer close(deltas)

		stream := g.client.Chat.Completions.NewStreaming(ctx, g.requestParams(p))
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if strings.TrimSpace(delta) == "" {
				continue
			}

			select {
			case deltas <- delta:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}

		if err := stream.Err(); err != nil {
			g.logger.Warn("llm_stream_error",
				zap.String("model", g.model),
				zap.Error(err),
			)
			errc <- &GenerationError{Operation: "generate_stream", Model: g.model, Err: err}
			return
		}
		errc <- nil
	}()

	return deltas, errc
}

// Healthcheck issues a one-token generation to prove reachability.
func (g *OpenAIGenerator) Healthcheck(ctx context.Context) error {
	_, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello"),
		},
		MaxTokens: openai.Int(1),
	})
	if err != nil {
		return &GenerationError{Operation: "healthcheck", Model: g.model, Err: err}
	}
	return nil
}
