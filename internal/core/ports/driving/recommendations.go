package driving

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// RecommendationService supplies suggested searches for the home view.
type RecommendationService interface {
	// Recommendations returns cached or freshly fetched suggestions.
	// It returns nil while the results view is active.
	Recommendations(ctx context.Context) ([]domain.Recommendation, error)

	// Refresh drops the cache and fetches again.
	Refresh(ctx context.Context) ([]domain.Recommendation, error)
}
