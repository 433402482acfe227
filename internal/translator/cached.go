package translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"linguaflow/internal/cache"
	"linguaflow/internal/contextutil"
)

// Cache stores translated chunks. Get returns cache.ErrMiss for unknown keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cached serves repeated chunks from a cache. Cache failures are logged and
// fall through to the wrapped translator.
type Cached struct {
	next  Translator
	cache Cache
	ttl   time.Duration
}

// NewCached wraps next with cache.
func NewCached(next Translator, c Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl}
}

// Name returns the wrapped backend name.
func (c *Cached) Name() string {
	return c.next.Name()
}

// CacheKey builds the cache key for a chunk translated by backend.
func CacheKey(backend string, req Request) string {
	sum := sha256.Sum256([]byte(req.Text))
	return strings.Join([]string{
		"lf", "tr", backend,
		strings.ToLower(req.Source), strings.ToLower(req.Target),
		hex.EncodeToString(sum[:]),
	}, ":")
}

// Supports reports whether the wrapped backend serves the pair.
func (c *Cached) Supports(source, target string) bool {
	return Supports(c.next, source, target)
}

// Translate implements Translator. Answers from a fallback backend are
// returned but not cached.
func (c *Cached) Translate(ctx context.Context, req Request) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)
	key := CacheKey(c.next.Name(), req)

	hit, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		logger.DebugContext(ctx, "translation cache hit", "key", key)
		return hit, nil
	case !errors.Is(err, cache.ErrMiss):
		logger.WarnContext(ctx, "translation cache lookup failed", "error", err)
	}

	nextCtx, served := WithServed(ctx)
	out, err := c.next.Translate(nextCtx, req)
	if err != nil {
		return "", err
	}
	if backend, ok := served.Fallback(); ok {
		logger.DebugContext(ctx, "not caching fallback translation", "backend", backend)
		return out, nil
	}

	if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
		logger.WarnContext(ctx, "failed to store translation in cache", "error", err)
	}
	return out, nil
}
