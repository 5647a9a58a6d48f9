package driving

import "context"

// HistoryService maintains the recent search list.
type HistoryService interface {
	// Load fetches the stored history and preference from the backend.
	Load(ctx context.Context)

	// Add records a query.
	Add(ctx context.Context, query string)

	// List returns the cached history, most recent first.
	List() []string

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// EnhancementEnabled reports whether history informs recommendations.
	EnhancementEnabled() bool

	// SetEnhancementEnabled stores the preference.
	SetEnhancementEnabled(ctx context.Context, enabled bool) error
}
