package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	Debug      bool

	// Answer generation
	OpenAIKey       string
	OpenAIBaseURL   string
	GenerationModel string
	StreamAnswers   bool

	// Transcription
	TranscriptionModel    string
	TranscriptionLanguage string
	DefaultSampleRate     int

	// Auth
	RequireAuth      bool
	JWTSecretKey     string
	JWTExpireMinutes int

	// Rate limiting
	RateLimitEnabled   bool
	RateLimitPerMinute int
	RedisURL           string

	// Storage
	UseDatabase      bool
	DatabaseURL      string
	HistoryRetention int

	// HTTP policy
	CORSOrigins  string
	EnforceHTTPS bool

	// Telemetry
	OTELEnabled  bool
	OTELEndpoint string
}

// Load loads configuration from environment variables. A .env file in
// the working directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "5000"),
		Debug:      getEnvBool("DEBUG", false),

		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		GenerationModel: getEnv("GENERATION_MODEL", ""),
		StreamAnswers:   getEnvBool("STREAM_ANSWERS", false),

		TranscriptionModel:    getEnv("TRANSCRIPTION_MODEL", "default"),
		TranscriptionLanguage: getEnv("TRANSCRIPTION_LANGUAGE", "pl"),
		DefaultSampleRate:     getEnvInt("DEFAULT_SAMPLE_RATE", 16000),

		RequireAuth:      getEnvBool("REQUIRE_AUTH", true),
		JWTSecretKey:     getEnv("JWT_SECRET_KEY", ""),
		JWTExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),

		RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RedisURL:           getEnv("REDIS_URL", ""),

		UseDatabase:      getEnvBool("USE_DATABASE", false),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		HistoryRetention: getEnvInt("HISTORY_RETENTION", 0),

		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		EnforceHTTPS: getEnvBool("ENFORCE_HTTPS", false),

		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}

	if cfg.UseDatabase && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when USE_DATABASE is enabled")
	}

	if cfg.JWTExpireMinutes <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE_MINUTES must be positive")
	}

	if cfg.HistoryRetention < 0 {
		return nil, fmt.Errorf("HISTORY_RETENTION must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
