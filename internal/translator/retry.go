package translator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"linguaflow/internal/contextutil"
	"linguaflow/internal/llm"
)

const defaultMaxDelay = 30 * time.Second

// RetryConfig controls Retrying.
type RetryConfig struct {
	MaxRetries int           // Extra attempts after the first one
	BaseDelay  time.Duration // Delay before the first retry, doubled each time
	MaxDelay   time.Duration // Upper bound for the delay; defaults to 30s
	Limiter    *rate.Limiter // Throttles every attempt; nil means unlimited
	Retryable  func(error) bool
}

// Retrying throttles calls to the wrapped translator and retries transient
// failures with exponential backoff.
type Retrying struct {
	next Translator
	cfg  RetryConfig
}

// NewRetrying wraps next. Retryable defaults to llm.IsRetryable.
func NewRetrying(next Translator, cfg RetryConfig) *Retrying {
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaultMaxDelay
	}
	if cfg.Retryable == nil {
		cfg.Retryable = llm.IsRetryable
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Retrying{next: next, cfg: cfg}
}

// Name returns the wrapped backend name.
func (r *Retrying) Name() string {
	return r.next.Name()
}

// Supports reports whether the wrapped backend serves the pair.
func (r *Retrying) Supports(source, target string) bool {
	return Supports(r.next, source, target)
}

// Translate implements Translator.
func (r *Retrying) Translate(ctx context.Context, req Request) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)
	delay := r.cfg.BaseDelay

	for attempt := 0; ; attempt++ {
		if r.cfg.Limiter != nil {
			if err := r.cfg.Limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter: %w", err)
			}
		}

		out, err := r.next.Translate(ctx, req)
		if err == nil {
			return out, nil
		}

		if !r.cfg.Retryable(err) {
			return "", err
		}
		if attempt >= r.cfg.MaxRetries {
			return "", fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		logger.WarnContext(ctx, "translation attempt failed, retrying",
			"backend", r.next.Name(), "attempt", attempt+1, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}
}
