package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseFile string
	LogLevel     string

	// Blob storage
	StorageBackend string // "local" or "s3"
	UploadDir      string

	// S3 (used when StorageBackend == "s3")
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// OpenRouter
	OpenRouterAPIKey string
	OpenRouterModel  string
	LLMTimeout       time.Duration

	// Analysis pipeline
	AnalysisWorkers   int
	AnalysisQueueSize int
	AnalysisTimeout   time.Duration

	// Upload limits
	MaxFileSize int64
}

func Load() (*Config, error) {
	// Optional; env vars win over .env entries.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseFile:      getEnv("DATABASE_FILE", "data/documents.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StorageBackend:    getEnv("STORAGE_BACKEND", "local"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		S3Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "documents"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		AnalysisWorkers:   getEnvInt("ANALYSIS_WORKERS", 2),
		AnalysisQueueSize: getEnvInt("ANALYSIS_QUEUE_SIZE", 64),
		AnalysisTimeout:   getEnvDuration("ANALYSIS_TIMEOUT", 120*time.Second),
		MaxFileSize:       10 * 1024 * 1024,
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}

	switch cfg.StorageBackend {
	case "local", "s3":
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be 'local' or 's3', got %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
