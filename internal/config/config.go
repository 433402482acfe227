// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Translation backends.
const (
	BackendLLM        = "llm"
	BackendDictionary = "dictionary"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  string
	LogFormat string
	DBPath    string

	TranslationBackend string
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string

	ChunkMaxSize         int
	WordChunkSize        int
	HistoryPreviewLength int

	TranslateMaxRetries   int
	TranslateRetryBackoff time.Duration
	TranslateRateLimit    float64 // Backend requests per second; 0 = unlimited

	RedisAddr string // Empty disables the translation cache
	RedisDB   int
	CacheTTL  time.Duration

	QdrantURL          string // Empty disables translation memory
	QdrantCollection   string
	QdrantVectorSize   int
	EmbeddingBaseURL   string
	EmbeddingModelName string
	MemoryMinScore     float64

	MaxUploadBytes int64
	HTTPRateLimit  float64 // Requests per second per client; 0 disables
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// MemoryEnabled reports whether translation memory is configured.
func (c *Config) MemoryEnabled() bool {
	return c.QdrantURL != ""
}

// CacheEnabled reports whether the Redis cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or up to five parent
// directories, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "9000"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DBPath:             getEnv("DB_PATH", "./data/linguaflow.db"),
		TranslationBackend: strings.ToLower(getEnv("TRANSLATION_BACKEND", BackendLLM)),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		QdrantURL:          getEnv("QDRANT_URL", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "translations"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
	}

	var errs []string
	parseInt := func(key string, def int, dst *int) {
		v, err := getInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		*dst = v
	}
	parseFloat := func(key string, def float64, dst *float64) {
		v, err := getFloat(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		*dst = v
	}
	parseDuration := func(key string, def time.Duration, dst *time.Duration) {
		v, err := getDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		*dst = v
	}

	var maxUpload int
	parseInt("CHUNK_MAX_SIZE", 4500, &cfg.ChunkMaxSize)
	parseInt("WORD_CHUNK_SIZE", 2000, &cfg.WordChunkSize)
	parseInt("HISTORY_PREVIEW_LENGTH", 200, &cfg.HistoryPreviewLength)
	parseInt("TRANSLATE_MAX_RETRIES", 3, &cfg.TranslateMaxRetries)
	parseDuration("TRANSLATE_RETRY_BACKOFF", 500*time.Millisecond, &cfg.TranslateRetryBackoff)
	parseFloat("TRANSLATE_RATE_LIMIT", 5, &cfg.TranslateRateLimit)
	parseInt("REDIS_DB", 0, &cfg.RedisDB)
	parseDuration("CACHE_TTL", 24*time.Hour, &cfg.CacheTTL)
	parseInt("QDRANT_VECTOR_SIZE", 0, &cfg.QdrantVectorSize)
	parseFloat("MEMORY_MIN_SCORE", 0.97, &cfg.MemoryMinScore)
	parseInt("MAX_UPLOAD_BYTES", 10<<20, &maxUpload)
	parseFloat("HTTP_RATE_LIMIT", 10, &cfg.HTTPRateLimit)
	cfg.MaxUploadBytes = int64(maxUpload)

	trustProxy, err := getBool("TRUST_PROXY_HEADERS", false)
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.TrustProxyHeaders = trustProxy

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create the database directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	switch c.TranslationBackend {
	case BackendLLM, BackendDictionary:
	default:
		return fmt.Errorf("TRANSLATION_BACKEND must be %q or %q, got %q", BackendLLM, BackendDictionary, c.TranslationBackend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	if c.ChunkMaxSize <= 0 {
		return fmt.Errorf("CHUNK_MAX_SIZE must be greater than 0")
	}
	if c.WordChunkSize <= 0 {
		return fmt.Errorf("WORD_CHUNK_SIZE must be greater than 0")
	}
	if c.HistoryPreviewLength <= 0 {
		return fmt.Errorf("HISTORY_PREVIEW_LENGTH must be greater than 0")
	}
	if c.TranslateMaxRetries < 0 {
		return fmt.Errorf("TRANSLATE_MAX_RETRIES must not be negative")
	}
	if c.TranslateRateLimit < 0 || c.HTTPRateLimit < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be greater than 0")
	}

	// This must match the output vector size of the embeddings model. If it
	// changes, the Qdrant collection must be recreated.
	if c.MemoryEnabled() && c.QdrantVectorSize <= 0 {
		return fmt.Errorf("QDRANT_VECTOR_SIZE is required when QDRANT_URL is set")
	}
	if c.MemoryMinScore <= 0 || c.MemoryMinScore > 1 {
		return fmt.Errorf("MEMORY_MIN_SCORE must be in (0, 1]")
	}
	return nil
}

// loadDotEnv loads the first .env file found walking up from the working directory.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 6; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a valid integer", key)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be true or false", key)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a duration such as 500ms or 24h", key)
	}
	return v, nil
}
