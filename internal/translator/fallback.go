package translator

import (
	"context"
	"errors"
	"fmt"

	"linguaflow/internal/contextutil"
)

// Fallback uses secondary when primary fails.
type Fallback struct {
	primary   Translator
	secondary Translator
}

// NewFallback creates a Fallback translator.
func NewFallback(primary, secondary Translator) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// Name returns the primary backend name.
func (f *Fallback) Name() string {
	return f.primary.Name()
}

// Supports reports whether either backend serves the pair.
func (f *Fallback) Supports(source, target string) bool {
	return Supports(f.primary, source, target) || Supports(f.secondary, source, target)
}

// Translate implements Translator. Cancellation is never masked by the
// fallback. A secondary answer is recorded on the Served recorders of ctx.
func (f *Fallback) Translate(ctx context.Context, req Request) (string, error) {
	out, err := f.primary.Translate(ctx, req)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}

	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "primary translator failed, using fallback",
		"primary", f.primary.Name(), "fallback", f.secondary.Name(), "error", err)

	out, fbErr := f.secondary.Translate(ctx, req)
	if fbErr != nil {
		return "", fmt.Errorf("%w (fallback %s: %v)", err, f.secondary.Name(), fbErr)
	}
	markFallback(ctx, f.secondary.Name())
	return out, nil
}
