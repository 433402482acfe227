package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"linguaflow/internal/cache"
	"linguaflow/internal/config"
	"linguaflow/internal/dictionary"
	"linguaflow/internal/handlers"
	"linguaflow/internal/http"
	"linguaflow/internal/llm"
	"linguaflow/internal/service"
	"linguaflow/internal/storage"
	"linguaflow/internal/translator"
	"linguaflow/internal/vectorstore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	required := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error { return storage.Ping(ctx, db) },
	}
	optional := map[string]handlers.HealthCheck{}

	tr := buildBackend(cfg)

	if cfg.CacheEnabled() {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisDB)
		defer func() {
			_ = redisCache.Close()
		}()
		if err := redisCache.Ping(ctx); err != nil {
			slog.Warn("Translation cache unreachable, continuing without it until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		tr = translator.NewCached(tr, redisCache, cfg.CacheTTL)
		optional["cache"] = redisCache.Ping
		slog.Info("Translation cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	if cfg.MemoryEnabled() {
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		defer func() {
			_ = store.Close()
		}()

		// Ensure collection exists with correct vector size
		if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		if info, err := store.GetCollectionInfo(ctx, cfg.QdrantCollection); err == nil {
			slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection,
				"vector_size", info.VectorSize, "points", info.PointsCount, "status", info.Status)
		}

		embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
		tr = translator.NewMemory(tr, embedder, store, cfg.QdrantCollection, float32(cfg.MemoryMinScore))
		optional["vector_store"] = handlers.VectorStoreCheck(store, cfg.QdrantCollection)
		slog.Info("Translation memory enabled", "collection", cfg.QdrantCollection, "min_score", cfg.MemoryMinScore)
	}

	svc := service.NewTranslationService(tr,
		storage.NewTranslationRepo(db),
		storage.NewFileRepo(db),
		service.Options{
			ChunkMaxSize:  cfg.ChunkMaxSize,
			WordChunkSize: cfg.WordChunkSize,
			PreviewLength: cfg.HistoryPreviewLength,
		},
	)

	router := http.NewRouter(&http.Deps{
		Service:        svc,
		Health:         handlers.NewHealthHandler(required, optional),
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimit:      cfg.HTTPRateLimit,
		RateBurst:      max(1, int(math.Ceil(cfg.HTTPRateLimit))*2),
		TrustProxy:     cfg.TrustProxyHeaders,
	})

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr, "backend", tr.Name())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// buildBackend creates the configured translator. The LLM backend retries
// transient failures and falls back to the dictionary.
func buildBackend(cfg *config.Config) translator.Translator {
	dict := dictionary.NewTranslator(dictionary.Default())
	if cfg.TranslationBackend == config.BackendDictionary {
		slog.Info("Using dictionary translation backend", "pairs", dict.Pairs())
		return dict
	}

	var limiter *rate.Limiter
	if cfg.TranslateRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.TranslateRateLimit), 1)
	}

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	retrying := translator.NewRetrying(translator.NewLLM(llmClient), translator.RetryConfig{
		MaxRetries: cfg.TranslateMaxRetries,
		BaseDelay:  cfg.TranslateRetryBackoff,
		Limiter:    limiter,
	})
	slog.Info("Using LLM translation backend", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	return translator.NewFallback(retrying, dict)
}
