package handlers

import (
	"net/http"

	"linguaflow/internal/service"
	"linguaflow/internal/translator"
)

// AdminHandler serves read-only service information.
type AdminHandler struct {
	svc service.TranslationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc service.TranslationService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// LanguagesResponse is the payload of GET /api/languages.
type LanguagesResponse struct {
	Languages []translator.Language `json:"languages"`
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to compute stats")
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}

// Languages handles GET /api/languages.
func (h *AdminHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, LanguagesResponse{Languages: h.svc.Languages()})
}
