package driven

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// SearchIndex queries the document index.
// Backed by Meilisearch's documents index.
type SearchIndex interface {
	// Search runs a compiled request and returns the raw hits.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}
