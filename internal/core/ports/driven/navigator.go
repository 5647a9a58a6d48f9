package driven

import "github.com/searchbox/searchbox-cli/internal/core/domain"

// Navigator records location changes the way a browser history would.
type Navigator interface {
	// PushState records a new location with its state.
	PushState(state domain.HistoryState, location string)

	// Navigate leaves the current view for location.
	Navigate(location string)
}
