package config

import "testing"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.ServerPort != "5000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "5000")
	}
	if cfg.TranscriptionLanguage != "pl" {
		t.Errorf("TranscriptionLanguage = %q, want %q", cfg.TranscriptionLanguage, "pl")
	}
	if cfg.DefaultSampleRate != 16000 {
		t.Errorf("DefaultSampleRate = %d, want 16000", cfg.DefaultSampleRate)
	}
	if !cfg.RequireAuth {
		t.Error("RequireAuth should default to true")
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("RateLimitPerMinute = %d, want 30", cfg.RateLimitPerMinute)
	}
	if cfg.HistoryRetention != 0 {
		t.Errorf("HistoryRetention = %d, want 0 (unbounded)", cfg.HistoryRetention)
	}
}

func TestLoadMissingOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without OPENAI_API_KEY")
	}
}

func TestLoadMissingJWTSecret(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("JWT_SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without JWT_SECRET_KEY")
	}
}

func TestLoadDatabaseURLRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("USE_DATABASE", "true")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when USE_DATABASE is set without DATABASE_URL")
	}
}

func TestLoadBoolParsing(t *testing.T) {
	setRequired(t)

	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"nonsense", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("STREAM_ANSWERS", tt.value)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			if cfg.StreamAnswers != tt.want {
				t.Errorf("StreamAnswers with %q = %v, want %v", tt.value, cfg.StreamAnswers, tt.want)
			}
		})
	}
}

func TestLoadNegativeRetentionRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("HISTORY_RETENTION", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject negative HISTORY_RETENTION")
	}
}
