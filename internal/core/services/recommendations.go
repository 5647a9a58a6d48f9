package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure Recommender implements the interface.
var _ driving.RecommendationService = (*Recommender)(nil)

// Recommender supplies suggested searches for the home view. Suggestions
// are cached for a TTL and never offered while results are on screen.
type Recommender struct {
	api     driven.RecommendationsAPI
	status  driven.StatusAPI
	history driving.HistoryService
	events  *Emitter
	ttl     time.Duration
	now     func() time.Time

	mu            sync.Mutex
	cached        []domain.Recommendation
	cachedAt      time.Time
	resultsActive bool
}

// NewRecommender creates a recommender. history may be nil, in which case
// suggestions are never history-enhanced.
func NewRecommender(
	api driven.RecommendationsAPI,
	status driven.StatusAPI,
	history driving.HistoryService,
	events *Emitter,
	ttl time.Duration,
) *Recommender {
	if ttl <= 0 {
		ttl = domain.RecommendationsTTL
	}
	return &Recommender{
		api:     api,
		status:  status,
		history: history,
		events:  events,
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetResultsActive records whether the results view is showing.
func (r *Recommender) SetResultsActive(active bool) {
	r.mu.Lock()
	r.resultsActive = active
	r.mu.Unlock()
}

// Recommendations returns fresh cached suggestions or fetches new ones.
func (r *Recommender) Recommendations(ctx context.Context) ([]domain.Recommendation, error) {
	r.mu.Lock()
	if r.resultsActive {
		r.mu.Unlock()
		return nil, nil
	}
	if r.cached != nil && r.now().Sub(r.cachedAt) < r.ttl {
		recs := append([]domain.Recommendation(nil), r.cached...)
		r.mu.Unlock()
		logger.Debug("recommendations: using cached suggestions")
		return recs, nil
	}
	r.mu.Unlock()

	return r.fetch(ctx)
}

// Refresh drops the cache and fetches again.
func (r *Recommender) Refresh(ctx context.Context) ([]domain.Recommendation, error) {
	r.mu.Lock()
	r.cached = nil
	active := r.resultsActive
	r.mu.Unlock()
	if active {
		return nil, nil
	}
	return r.fetch(ctx)
}

// Invalidate drops cached suggestions without fetching.
func (r *Recommender) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *Recommender) fetch(ctx context.Context) ([]domain.Recommendation, error) {
	if r.status != nil {
		st, err := r.status.LLMStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("checking LLM status: %w", err)
		}
		if !st.Available() {
			return nil, domain.ErrLLMUnavailable
		}
	}

	var history []string
	if r.history != nil && r.history.EnhancementEnabled() {
		if h := r.history.List(); len(h) > 0 {
			history = h
			logger.Debug("recommendations: enhancing with %d history entries", len(h))
		}
	}

	resp, err := r.api.Recommendations(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}
	if !resp.Success {
		logger.Debug("recommendations: backend declined: %s", resp.Message)
		return nil, nil
	}
	if resp.Enhanced {
		logger.Debug("recommendations: enhanced using search history")
	}

	recs := append([]domain.Recommendation{}, resp.Recommendations...)
	r.mu.Lock()
	r.cached = recs
	r.cachedAt = r.now()
	active := r.resultsActive
	r.mu.Unlock()

	if active {
		return nil, nil
	}
	r.events.Emit(domain.Event{Kind: domain.EventRecommendations, Payload: recs})
	return recs, nil
}
