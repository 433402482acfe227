package handlers

import (
	"errors"
	"io"
	"net/http"

	"linguaflow/internal/contextutil"
	"linguaflow/internal/service"
)

// DefaultMaxUploadBytes limits uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// FileHandler handles multipart file translation uploads.
type FileHandler struct {
	svc      service.TranslationService
	maxBytes int64
}

// NewFileHandler creates a new FileHandler. maxBytes <= 0 selects DefaultMaxUploadBytes.
func NewFileHandler(svc service.TranslationService, maxBytes int64) *FileHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &FileHandler{svc: svc, maxBytes: maxBytes}
}

// FileResponse represents the HTTP response payload for a file translation.
type FileResponse struct {
	FileID string `json:"file_id"`
	Title  string `json:"title"`
	Format string `json:"format"`
	TranslateResponse
}

// ServeHTTP expects the multipart fields file, source, target and strategy.
func (h *FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Form fields and multipart overhead share the limit with the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if header.Size > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read uploaded file", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	resp, err := h.svc.TranslateFile(ctx, service.FileRequest{
		Filename: header.Filename,
		Content:  content,
		Source:   r.FormValue("source"),
		Target:   r.FormValue("target"),
		Strategy: r.FormValue("strategy"),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to translate file")
		return
	}

	writeJSON(ctx, w, http.StatusOK, FileResponse{
		FileID:            resp.FileID,
		Title:             resp.Title,
		Format:            resp.Format,
		TranslateResponse: toTranslateResponse(resp.TranslateResponse),
	})
}
