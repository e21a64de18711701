package handlers

import (
	"context"
	"net/http"

	"llamadesk-backend/internal/models"
)

type modelCatalog interface {
	ListModels(ctx context.Context) ([]models.ModelSummary, error)
}

type ModelCatalogHandler struct {
	catalog modelCatalog
}

func NewModelCatalogHandler(catalog modelCatalog) *ModelCatalogHandler {
	return &ModelCatalogHandler{catalog: catalog}
}

func (h *ModelCatalogHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.catalog.ListModels(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ModelsResponse{Models: summaries})
}
