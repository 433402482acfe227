package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"linguaflow/internal/service"
	"linguaflow/internal/storage"
)

// TranslationsHandler serves the translation history.
type TranslationsHandler struct {
	svc service.TranslationService
}

// NewTranslationsHandler creates a new TranslationsHandler.
func NewTranslationsHandler(svc service.TranslationService) *TranslationsHandler {
	return &TranslationsHandler{svc: svc}
}

// TranslationSummary is one entry of the history list.
type TranslationSummary struct {
	ID         string    `json:"id"`
	FileID     string    `json:"file_id,omitempty"`
	Source     string    `json:"source"`
	Target     string    `json:"target"`
	Backend    string    `json:"backend"`
	Preview    string    `json:"preview"`
	Chunks     int       `json:"chunks"`
	Characters int       `json:"characters"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse is the payload of GET /api/translations.
type HistoryResponse struct {
	Items  []TranslationSummary `json:"items"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// TranslationDetail is a full history entry.
type TranslationDetail struct {
	ID             string    `json:"id"`
	FileID         string    `json:"file_id,omitempty"`
	Source         string    `json:"source"`
	Target         string    `json:"target"`
	Strategy       string    `json:"strategy"`
	Backend        string    `json:"backend"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	Chunks         int       `json:"chunks"`
	Characters     int       `json:"characters"`
	DurationMS     int64     `json:"duration_ms"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// queryInt parses a non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// List handles GET /api/translations?limit=&offset=.
func (h *TranslationsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	offset, ok := queryInt(r, "offset")
	if !ok {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	list, err := h.svc.History(ctx, limit, offset)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list translations")
		return
	}

	items := make([]TranslationSummary, len(list))
	for i, s := range list {
		items[i] = toSummary(s)
	}
	writeJSON(ctx, w, http.StatusOK, HistoryResponse{Items: items, Limit: limit, Offset: offset})
}

// Get handles GET /api/translations/{id}.
func (h *TranslationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get translation")
		return
	}

	writeJSON(ctx, w, http.StatusOK, TranslationDetail{
		ID:             rec.ID,
		FileID:         rec.FileID,
		Source:         rec.SourceLang,
		Target:         rec.TargetLang,
		Strategy:       rec.Strategy,
		Backend:        rec.Backend,
		SourceText:     rec.SourceText,
		TranslatedText: rec.TranslatedText,
		Chunks:         rec.ChunkCount,
		Characters:     rec.CharCount,
		DurationMS:     rec.DurationMS,
		Status:         string(rec.Status),
		Error:          rec.Error,
		CreatedAt:      rec.CreatedAt,
	})
}

// Delete handles DELETE /api/translations/{id}.
func (h *TranslationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete translation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSummary(s *storage.TranslationSummary) TranslationSummary {
	return TranslationSummary{
		ID:         s.ID,
		FileID:     s.FileID,
		Source:     s.SourceLang,
		Target:     s.TargetLang,
		Backend:    s.Backend,
		Preview:    s.Preview,
		Chunks:     s.ChunkCount,
		Characters: s.CharCount,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
	}
}
