package translator

import (
	"context"
	"sync"
)

type servedKey struct{}

// Served records which backend produced a translation when a Fallback
// answered instead of its primary. Recorders nest: a fallback marks every
// recorder on the context chain, so a decorator and the service above it both
// see it.
type Served struct {
	mu       sync.Mutex
	parent   *Served
	backend  string
	fallback bool
}

// WithServed returns a context carrying a new recorder linked to the one
// already on ctx, if any.
func WithServed(ctx context.Context) (context.Context, *Served) {
	parent, _ := ctx.Value(servedKey{}).(*Served)
	s := &Served{parent: parent}
	return context.WithValue(ctx, servedKey{}, s), s
}

// Fallback reports whether a fallback backend answered, and which one.
func (s *Served) Fallback() (backend string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend, s.fallback
}

// markFallback records that backend answered in place of the primary.
func markFallback(ctx context.Context, backend string) {
	s, _ := ctx.Value(servedKey{}).(*Served)
	for ; s != nil; s = s.parent {
		s.mu.Lock()
		s.backend = backend
		s.fallback = true
		s.mu.Unlock()
	}
}
