package translator

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"linguaflow/internal/contextutil"
	"linguaflow/internal/vectorstore"
)

// memoryNamespace scopes the deterministic point ids of memory entries.
var memoryNamespace = uuid.MustParse("6f1d3c3e-2b7a-4c55-9a0e-8f3f5e7d2a11")

const memorySearchK = 3

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Memory is a translation memory backed by a vector store. Chunks whose
// source text was translated before (ignoring whitespace differences) for the
// same language pair reuse the stored translation. Memory failures are logged
// and never fail a translation.
type Memory struct {
	next       Translator
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	minScore   float32
}

// NewMemory wraps next with a translation memory.
func NewMemory(next Translator, embedder Embedder, store vectorstore.VectorStore, collection string, minScore float32) *Memory {
	return &Memory{
		next:       next,
		embedder:   embedder,
		store:      store,
		collection: collection,
		minScore:   minScore,
	}
}

// Name returns the wrapped backend name.
func (m *Memory) Name() string {
	return m.next.Name()
}

// MemoryID is the point id of the memory entry for req.
func MemoryID(req Request) string {
	key := strings.ToLower(req.Source) + "\x00" + strings.ToLower(req.Target) + "\x00" + normalizeText(req.Text)
	return uuid.NewSHA1(memoryNamespace, []byte(key)).String()
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Supports reports whether the wrapped backend serves the pair.
func (m *Memory) Supports(source, target string) bool {
	return Supports(m.next, source, target)
}

// Translate implements Translator. Answers from a fallback backend are
// returned but not remembered.
func (m *Memory) Translate(ctx context.Context, req Request) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Text) == "" {
		return m.next.Translate(ctx, req)
	}

	vecs, err := m.embedder.EmbedTexts(ctx, []string{req.Text})
	if err != nil || len(vecs) != 1 {
		logger.WarnContext(ctx, "translation memory embedding failed", "error", err)
		return m.next.Translate(ctx, req)
	}
	vec := vecs[0]

	filters := map[string]any{
		"source_lang": strings.ToLower(req.Source),
		"target_lang": strings.ToLower(req.Target),
	}
	results, err := m.store.Search(ctx, m.collection, vec, memorySearchK, filters)
	if err != nil {
		logger.WarnContext(ctx, "translation memory search failed", "error", err)
	}

	want := normalizeText(req.Text)
	for _, r := range results {
		if r.Score < m.minScore {
			continue
		}
		src, _ := r.Meta["source_text"].(string)
		out, ok := r.Meta["translated_text"].(string)
		if ok && normalizeText(src) == want {
			logger.DebugContext(ctx, "translation memory hit", "point_id", r.PointID, "score", r.Score)
			return out, nil
		}
	}

	nextCtx, served := WithServed(ctx)
	out, err := m.next.Translate(nextCtx, req)
	if err != nil {
		return "", err
	}
	if backend, ok := served.Fallback(); ok {
		logger.DebugContext(ctx, "not remembering fallback translation", "backend", backend)
		return out, nil
	}

	point := vectorstore.Point{
		ID:  MemoryID(req),
		Vec: vec,
		Meta: map[string]any{
			"source_lang":     filters["source_lang"],
			"target_lang":     filters["target_lang"],
			"source_text":     req.Text,
			"translated_text": out,
			"backend":         m.next.Name(),
		},
	}
	if err := m.store.Upsert(ctx, m.collection, []vectorstore.Point{point}); err != nil {
		logger.WarnContext(ctx, "failed to store translation memory entry", "error", err)
	}

	return out, nil
}
