package services

import (
	"context"
	"fmt"

	"llamadesk-backend/internal/models"
	"llamadesk-backend/internal/ollama"
)

// ModelCatalogService answers "what models are installed locally". It shares
// no state with the chat service, so listing runs concurrently with asks.
type ModelCatalogService struct {
	client *ollama.Client
}

func NewModelCatalogService(client *ollama.Client) *ModelCatalogService {
	return &ModelCatalogService{client: client}
}

// ListModels fetches the registry fresh on every call. No caching, no
// pagination, no filtering.
func (s *ModelCatalogService) ListModels(ctx context.Context) ([]models.ModelSummary, error) {
	local, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("Error communicating with Ollama: %v", err)}
	}

	summaries := make([]models.ModelSummary, len(local))
	for i, m := range local {
		summaries[i] = models.ModelSummary{
			Name:       m.Name,
			ModifiedAt: m.ModifiedAt,
			Size:       m.Size,
		}
	}
	return summaries, nil
}
