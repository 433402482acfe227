package handlers

import (
	"net/http"
	"unicode/utf8"

	"linguaflow/internal/contextutil"
	"linguaflow/internal/service"
)

// ChunksHandler previews how a text would be split.
type ChunksHandler struct {
	svc      service.TranslationService
	maxBytes int64
}

// NewChunksHandler creates a new ChunksHandler. Request bodies are limited to
// maxBytes; maxBytes <= 0 selects DefaultMaxUploadBytes.
func NewChunksHandler(svc service.TranslationService, maxBytes int64) *ChunksHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ChunksHandler{svc: svc, maxBytes: maxBytes}
}

// ChunksRequest is the preview request payload. MaxChunkSize 0 uses the server setting.
type ChunksRequest struct {
	Text         string `json:"text"`
	Strategy     string `json:"strategy,omitempty"`
	MaxChunkSize int    `json:"max_chunk_size,omitempty"`
}

// ChunkInfo describes one chunk of a preview.
type ChunkInfo struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Length    int    `json:"length"`
	Separator string `json:"separator"`
}

// ChunksResponse is the preview response payload.
type ChunksResponse struct {
	Count  int         `json:"count"`
	Chunks []ChunkInfo `json:"chunks"`
}

// ServeHTTP handles POST /api/chunks.
func (h *ChunksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChunksRequest
	if !decodeJSON(w, r, h.maxBytes, &req) {
		return
	}

	chunks, err := h.svc.Preview(req.Text, req.Strategy, req.MaxChunkSize)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to split text")
		return
	}

	resp := ChunksResponse{Count: len(chunks), Chunks: make([]ChunkInfo, len(chunks))}
	for i, c := range chunks {
		resp.Chunks[i] = ChunkInfo{
			Index:     c.Index,
			Text:      c.Text,
			Length:    utf8.RuneCountInString(c.Text),
			Separator: c.Separator,
		}
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
