// Package navigation records application locations the way a browser
// history stack does, so front-ends can go back to earlier searches.
package navigation

import (
	"sync"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure History implements the interface.
var _ driven.Navigator = (*History)(nil)

// maxEntries bounds the stack; the oldest entries are dropped first.
const maxEntries = 50

// Entry is one recorded location.
type Entry struct {
	State    domain.HistoryState
	Location string
}

// History is an in-memory location stack.
type History struct {
	mu         sync.Mutex
	entries    []Entry
	onNavigate func(location string)
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// OnNavigate registers fn for locations that leave the current view.
func (h *History) OnNavigate(fn func(location string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNavigate = fn
}

// PushState records a new location.
func (h *History) PushState(state domain.HistoryState, location string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1].Location == location {
		h.entries[n-1].State = state
		return
	}
	h.entries = append(h.entries, Entry{State: state, Location: location})
	if len(h.entries) > maxEntries {
		h.entries = h.entries[len(h.entries)-maxEntries:]
	}
	logger.Debug("navigation: push %s (%d entries)", location, len(h.entries))
}

// Navigate records location and hands it to the OnNavigate callback.
func (h *History) Navigate(location string) {
	h.mu.Lock()
	h.entries = append(h.entries, Entry{Location: location})
	fn := h.onNavigate
	h.mu.Unlock()

	logger.Debug("navigation: navigate %s", location)
	if fn != nil {
		fn(location)
	}
}

// Current returns the newest entry.
func (h *History) Current() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Back drops the newest entry and returns the one before it.
// It returns false when there is nowhere to go back to.
func (h *History) Back() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return Entry{}, false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
