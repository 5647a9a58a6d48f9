package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure HistoryTracker implements the interface.
var _ driving.HistoryService = (*HistoryTracker)(nil)

// HistoryTracker keeps the recent search list in memory and mirrors it to
// the backend. Local updates apply immediately; whatever list the backend
// answers with replaces the local one, so the last writer wins.
type HistoryTracker struct {
	api    driven.HistoryAPI
	events *Emitter

	mu          sync.RWMutex
	entries     []string
	enhancement bool
}

// NewHistoryTracker creates a tracker. History enhancement starts enabled
// until Load reads the stored preference.
func NewHistoryTracker(api driven.HistoryAPI, events *Emitter) *HistoryTracker {
	return &HistoryTracker{
		api:         api,
		events:      events,
		enhancement: true,
	}
}

// Load fetches the stored history and enhancement preference. Failures
// leave the defaults in place.
func (h *HistoryTracker) Load(ctx context.Context) {
	if h.api == nil {
		return
	}
	if history, err := h.api.GetHistory(ctx); err != nil {
		logger.Warn("history: load failed: %v", err)
	} else {
		h.mu.Lock()
		h.entries = capHistory(history)
		h.mu.Unlock()
	}

	if enabled, err := h.api.GetEnhancement(ctx); err != nil {
		logger.Warn("history: load enhancement preference failed: %v", err)
	} else {
		h.mu.Lock()
		h.enhancement = enabled
		h.mu.Unlock()
	}
}

// Add moves query to the front of the history. Entries differing only in
// case are replaced, and the list keeps the five most recent.
func (h *HistoryTracker) Add(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	h.mu.Lock()
	h.entries = pushHistory(h.entries, query)
	h.mu.Unlock()
	h.changed()

	if h.api == nil {
		return
	}
	stored, err := h.api.AddHistory(ctx, query)
	if err != nil {
		logger.Warn("history: save %q failed: %v", query, err)
		return
	}
	if stored != nil {
		h.mu.Lock()
		h.entries = capHistory(stored)
		h.mu.Unlock()
		h.changed()
	}
}

// pushHistory returns entries with query at the front.
func pushHistory(entries []string, query string) []string {
	out := make([]string, 0, domain.MaxHistoryEntries)
	out = append(out, query)
	for _, e := range entries {
		if strings.EqualFold(e, query) {
			continue
		}
		out = append(out, e)
	}
	return capHistory(out)
}

func capHistory(entries []string) []string {
	if len(entries) > domain.MaxHistoryEntries {
		entries = entries[:domain.MaxHistoryEntries]
	}
	return append([]string(nil), entries...)
}

// List returns the history, most recent first.
func (h *HistoryTracker) List() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.entries...)
}

// Clear empties the history locally and on the backend.
func (h *HistoryTracker) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
	h.changed()

	if h.api == nil {
		return nil
	}
	if err := h.api.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clearing search history: %w", err)
	}
	return nil
}

// EnhancementEnabled reports whether history informs recommendations.
func (h *HistoryTracker) EnhancementEnabled() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.enhancement
}

// SetEnhancementEnabled stores the preference locally and on the backend.
func (h *HistoryTracker) SetEnhancementEnabled(ctx context.Context, enabled bool) error {
	h.mu.Lock()
	h.enhancement = enabled
	h.mu.Unlock()

	if h.api == nil {
		return nil
	}
	if err := h.api.SetEnhancement(ctx, enabled); err != nil {
		return fmt.Errorf("saving history enhancement preference: %w", err)
	}
	return nil
}

func (h *HistoryTracker) changed() {
	h.events.Emit(domain.Event{Kind: domain.EventHistoryChanged, Payload: h.List()})
}
