package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperrors "hrflow/internal/errors"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	Retrieval RetrievalConfig
	Pipeline  PipelineConfig
	Mail      MailConfig
	Storage   StorageConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogJSON  bool
	LogDebug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey         string
	RequestTimeout time.Duration
	MaxRetries     int
}

type RetrievalConfig struct {
	TopK           int
	ScoreThreshold float32
}

type PipelineConfig struct {
	MaxCorrectionAttempts int
}

type MailConfig struct {
	HRAddress          string
	IODAddress         string
	PollInterval       time.Duration
	MinReplyConfidence float64
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency int
}

func Load() *Config {
	// Missing .env is fine; env vars or defaults apply.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			Env:      getEnv("ENV", "development"),
			LogJSON:  getEnvAsBool("LOG_JSON", false),
			LogDebug: getEnvAsBool("LOG_DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hrflow"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "recruitment_knowledge_base"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			RequestTimeout: getEnvAsDuration("GEMINI_REQUEST_TIMEOUT", "120s"),
			MaxRetries:     getEnvAsInt("GEMINI_MAX_RETRIES", 3),
		},
		Retrieval: RetrievalConfig{
			TopK:           getEnvAsInt("RETRIEVAL_TOP_K", 3),
			ScoreThreshold: getEnvAsFloat32("RETRIEVAL_SCORE_THRESHOLD", 0.75),
		},
		Pipeline: PipelineConfig{
			MaxCorrectionAttempts: getEnvAsInt("MAX_CORRECTION_ATTEMPTS", 2),
		},
		Mail: MailConfig{
			HRAddress:          getEnv("HR_EMAIL", "hr@example.com"),
			IODAddress:         getEnv("IOD_EMAIL", "iod@example.com"),
			PollInterval:       getEnvAsDuration("EMAIL_POLL_INTERVAL", "60s"),
			MinReplyConfidence: getEnvAsFloat64("MIN_REPLY_CONFIDENCE", 0.7),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 3),
		},
	}
}

// Validate rejects configuration the process cannot start with.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "GEMINI_API_KEY is required", nil)
	}
	if c.Mail.MinReplyConfidence < 0 || c.Mail.MinReplyConfidence > 1 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "MIN_REPLY_CONFIDENCE must be between 0 and 1", nil)
	}
	if c.Retrieval.TopK < 1 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "RETRIEVAL_TOP_K must be at least 1", nil)
	}
	if c.Worker.Concurrency < 1 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "WORKER_CONCURRENCY must be at least 1", nil)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	return float32(getEnvAsFloat64(key, float64(defaultValue)))
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
