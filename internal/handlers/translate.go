package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"linguaflow/internal/contextutil"
	"linguaflow/internal/service"
)

// TranslateHandler handles HTTP requests for text translation.
type TranslateHandler struct {
	svc      service.TranslationService
	maxBytes int64
}

// NewTranslateHandler creates a new TranslateHandler. Request bodies are limited to
// maxBytes; maxBytes <= 0 selects DefaultMaxUploadBytes.
func NewTranslateHandler(svc service.TranslationService, maxBytes int64) *TranslateHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &TranslateHandler{svc: svc, maxBytes: maxBytes}
}

// TranslateRequest represents the HTTP request payload for translation.
type TranslateRequest struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Strategy string `json:"strategy,omitempty"`
}

// TranslateResponse represents the HTTP response payload for translation.
type TranslateResponse struct {
	ID             string `json:"id"`
	TranslatedText string `json:"translated_text"`
	Chunks         int    `json:"chunks"`
	Backend        string `json:"backend"`
	DurationMS     int64  `json:"duration_ms"`
}

// ChunkEvent is the payload of a "chunk" server-sent event.
type ChunkEvent struct {
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Text      string `json:"text"`
	Separator string `json:"separator"`
}

func toTranslateResponse(resp service.TranslateResponse) TranslateResponse {
	return TranslateResponse{
		ID:             resp.ID,
		TranslatedText: resp.TranslatedText,
		Chunks:         resp.Chunks,
		Backend:        resp.Backend,
		DurationMS:     resp.DurationMS,
	}
}

// ServeHTTP handles HTTP requests for translation. With ?stream=true the
// chunks are sent as server-sent events while they are translated.
func (h *TranslateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req TranslateRequest
	if !decodeJSON(w, r, h.maxBytes, &req) {
		return
	}

	svcReq := service.TranslateRequest{
		Text:     req.Text,
		Source:   req.Source,
		Target:   req.Target,
		Strategy: req.Strategy,
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreaming(ctx, w, svcReq)
		return
	}

	resp, err := h.svc.Translate(ctx, svcReq)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to translate text")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toTranslateResponse(resp))
}

// handleStreaming translates using Server-Sent Events. Validation errors that
// happen before the first chunk are still reported as plain JSON errors.
func (h *TranslateHandler) handleStreaming(ctx context.Context, w http.ResponseWriter, req service.TranslateRequest) {
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}

	resp, err := h.svc.TranslateStream(ctx, req, func(c service.ChunkResult) error {
		start()
		if err := writeEvent(w, "chunk", ChunkEvent{Index: c.Index, Total: c.Total, Text: c.Text, Separator: c.Separator}); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if err != nil {
		if !started {
			handleServiceError(ctx, w, err, "Failed to translate text")
			return
		}
		logger.ErrorContext(ctx, "error streaming translation", "error", err)
		_ = writeEvent(w, "error", ErrorResponse{Error: err.Error()})
		flusher.Flush()
		return
	}

	start()
	_ = writeEvent(w, "complete", toTranslateResponse(resp))
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// writeEvent writes one named SSE event with a JSON payload.
func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
