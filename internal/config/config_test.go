package config

import (
	"testing"
	"time"

	apperrors "hrflow/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"RETRIEVAL_TOP_K", "RETRIEVAL_SCORE_THRESHOLD",
		"MAX_CORRECTION_ATTEMPTS", "MIN_REPLY_CONFIDENCE",
		"EMAIL_POLL_INTERVAL", "GEMINI_MAX_RETRIES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Retrieval.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.ScoreThreshold != 0.75 {
		t.Errorf("ScoreThreshold = %v, want 0.75", cfg.Retrieval.ScoreThreshold)
	}
	if cfg.Pipeline.MaxCorrectionAttempts != 2 {
		t.Errorf("MaxCorrectionAttempts = %d, want 2", cfg.Pipeline.MaxCorrectionAttempts)
	}
	if cfg.Mail.MinReplyConfidence != 0.7 {
		t.Errorf("MinReplyConfidence = %v, want 0.7", cfg.Mail.MinReplyConfidence)
	}
	if cfg.Mail.PollInterval != 60*time.Second {
		t.Errorf("PollInterval = %v, want 60s", cfg.Mail.PollInterval)
	}
	if cfg.Gemini.MaxRetries != 3 {
		t.Errorf("GeminiMaxRetries = %d, want 3", cfg.Gemini.MaxRetries)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "5")
	t.Setenv("MAX_CORRECTION_ATTEMPTS", "4")
	t.Setenv("EMAIL_POLL_INTERVAL", "15s")

	cfg := Load()

	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Pipeline.MaxCorrectionAttempts != 4 {
		t.Errorf("MaxCorrectionAttempts = %d, want 4", cfg.Pipeline.MaxCorrectionAttempts)
	}
	if cfg.Mail.PollInterval != 15*time.Second {
		t.Errorf("PollInterval = %v, want 15s", cfg.Mail.PollInterval)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Gemini:    GeminiConfig{APIKey: "test-key"},
			Mail:      MailConfig{MinReplyConfidence: 0.7},
			Retrieval: RetrievalConfig{TopK: 3},
			Worker:    WorkerConfig{Concurrency: 3},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() on a complete config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.Gemini.APIKey = "" }},
		{"confidence above one", func(c *Config) { c.Mail.MinReplyConfidence = 1.5 }},
		{"negative confidence", func(c *Config) { c.Mail.MinReplyConfidence = -0.1 }},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"zero concurrency", func(c *Config) { c.Worker.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted a broken config")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeConfig) {
				t.Errorf("error = %v, want a config error", err)
			}
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		User:     "hr",
		Password: "secret",
		DBName:   "hrflow",
	}}

	want := "host=db.internal port=5433 user=hr password=secret dbname=hrflow sslmode=disable"
	if got := cfg.GetDatabaseDSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
