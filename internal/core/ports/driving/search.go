package driving

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search parses, validates, compiles and runs a query for a page.
	// Invalid syntax returns *domain.ValidationError unless force is set.
	// Image-mode queries return domain.ErrImageMode after navigating.
	Search(ctx context.Context, query string, page int, force bool) (*domain.ResultPage, error)

	// SearchImages runs the image gallery search.
	SearchImages(ctx context.Context, query string, page int) (*domain.ImagePage, error)

	// Explore lists documents without a query.
	Explore(ctx context.Context, filter domain.ExploreFilter, sort domain.SortOrder, offset int) (*domain.ExplorePage, error)

	// Validate checks query syntax without searching.
	Validate(query string) domain.Validation

	// Current returns the last page applied, or nil.
	Current() *domain.ResultPage

	// GoToPage re-runs the current search for another page.
	GoToPage(ctx context.Context, page int) (*domain.ResultPage, error)

	// PopState restores the search a history entry or location points at
	// without recording a new entry. It returns nil for the home view.
	PopState(ctx context.Context, state *domain.HistoryState, location string) (*domain.ResultPage, error)

	// Home leaves the results view.
	Home()
}
