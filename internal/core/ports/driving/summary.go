package driving

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// SummaryService generates AI summaries for search results.
type SummaryService interface {
	// Generate produces a summary for the query and results, streaming
	// intermediate views to onUpdate. A cached summary is returned
	// directly unless forceRefresh is set.
	Generate(ctx context.Context, query string, results []domain.Record, forceRefresh bool, onUpdate func(domain.SummaryView)) (domain.SummaryView, error)

	// Available reports whether the backend can summarise right now.
	Available(ctx context.Context) bool
}

// CacheService manages persisted summaries.
type CacheService interface {
	// Entries returns every live entry.
	Entries(ctx context.Context) ([]domain.CacheEntry, error)

	// Cleanup removes expired and corrupt entries, returning the count removed.
	Cleanup(ctx context.Context) (int, error)

	// ClearAll removes every summary entry, returning the count removed.
	ClearAll(ctx context.Context) (int, error)

	// Clear removes the entry for a query and its results.
	Clear(ctx context.Context, query string, results []domain.Record) error
}
