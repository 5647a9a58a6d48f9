package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure SearchController implements the interface.
var _ driving.SearchService = (*SearchController)(nil)

// Image gallery origins recorded in the gallery location.
const (
	OriginDirect  = "direct"
	OriginGallery = "gallery"
)

// ResultsViewObserver is told when the results view opens or closes.
type ResultsViewObserver interface {
	SetResultsActive(active bool)
}

// SearchController owns the state of the current search: query, page,
// results and totals. Every search is stamped with a version; a reply that
// arrives after a newer search started is discarded, and the superseded
// request is cancelled.
type SearchController struct {
	index    driven.SearchIndex
	nav      driven.Navigator
	events   *Emitter
	settings domain.SearchSettings

	summaries       driving.SummaryService
	summarySettings domain.SummarySettings
	history         driving.HistoryService
	observer        ResultsViewObserver

	version   atomic.Uint64
	exploring atomic.Bool

	mu            sync.Mutex
	current       *domain.ResultPage
	cancelSearch  context.CancelFunc
	cancelSummary context.CancelFunc
}

// NewSearchController creates a controller. nav and events may be nil.
func NewSearchController(
	index driven.SearchIndex,
	nav driven.Navigator,
	events *Emitter,
	settings domain.SearchSettings,
) *SearchController {
	if settings.PageSize <= 0 {
		settings.PageSize = domain.DefaultPageSize
	}
	if settings.ImagePageSize <= 0 {
		settings.ImagePageSize = domain.ImagePageSize
	}
	if settings.ExplorePageSize <= 0 {
		settings.ExplorePageSize = domain.ExplorePageSize
	}
	if !settings.Sort.IsValid() {
		settings.Sort = domain.SortRecent
	}
	return &SearchController{
		index:    index,
		nav:      nav,
		events:   events,
		settings: settings,
	}
}

// SetSummaryService enables automatic summaries after each search.
// Summaries start after settings.Delay when settings.Enabled is true.
func (c *SearchController) SetSummaryService(s driving.SummaryService, settings domain.SummarySettings) {
	c.summaries = s
	c.summarySettings = settings
}

// SetHistoryService records successful searches in the search history.
func (c *SearchController) SetHistoryService(h driving.HistoryService) {
	c.history = h
}

// SetResultsViewObserver registers the component that hides itself while
// results are shown.
func (c *SearchController) SetResultsViewObserver(o ResultsViewObserver) {
	c.observer = o
}

// Validate checks query syntax without searching.
func (c *SearchController) Validate(query string) domain.Validation {
	return ValidateQuery(query)
}

// Current returns the last page applied, or nil.
func (c *SearchController) Current() *domain.ResultPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Search parses, validates, compiles and runs query for page, then records
// the new location. Invalid syntax stops the search unless force is set.
func (c *SearchController) Search(ctx context.Context, query string, page int, force bool) (*domain.ResultPage, error) {
	return c.search(ctx, query, page, force, true)
}

// GoToPage re-runs the current search for another page.
func (c *SearchController) GoToPage(ctx context.Context, page int) (*domain.ResultPage, error) {
	cur := c.Current()
	if cur == nil {
		return nil, fmt.Errorf("%w: no active search", domain.ErrInvalidInput)
	}
	if total := cur.State.TotalPages(); page < 1 || page > total {
		return nil, fmt.Errorf("%w: page %d outside 1..%d", domain.ErrInvalidInput, page, total)
	}
	return c.search(ctx, cur.Query, page, true, true)
}

// PopState restores the search a history entry points at without pushing
// a new entry. Without state, the query and page are read from location.
// A location without a query returns to the home view.
func (c *SearchController) PopState(ctx context.Context, state *domain.HistoryState, location string) (*domain.ResultPage, error) {
	query, page := "", 1
	if state != nil && state.Query != "" {
		query, page = state.Query, max(state.Page, 1)
	} else if location != "" {
		q, p, err := domain.ParseSearchURL(location)
		if err != nil {
			return nil, fmt.Errorf("%w: bad location %q: %v", domain.ErrInvalidInput, location, err)
		}
		query, page = q, p
	}

	if strings.TrimSpace(query) == "" {
		c.home(false)
		return nil, nil
	}
	return c.search(ctx, query, page, true, false)
}

// Home leaves the results view.
func (c *SearchController) Home() {
	c.home(true)
}

func (c *SearchController) home(push bool) {
	c.mu.Lock()
	c.current = nil
	if c.cancelSummary != nil {
		c.cancelSummary()
		c.cancelSummary = nil
	}
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.SetResultsActive(false)
	}
	if push && c.nav != nil {
		c.nav.PushState(domain.HistoryState{}, "/")
	}
}

func (c *SearchController) search(ctx context.Context, query string, page int, force, push bool) (*domain.ResultPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		c.events.Toast(domain.ToastInfo, "Empty Search", "Please enter a search query")
		return nil, domain.ErrEmptyQuery
	}

	if !force {
		if v := ValidateQuery(query); v.Status == domain.StatusInvalid {
			logger.Debug("search: %q failed validation: %s", query, v.Message)
			return nil, &domain.ValidationError{Query: query, Diagnostics: v.Diagnostics}
		}
	}

	logger.Section("Search")
	parsed := ParseQuery(query)
	if parsed.IsEmpty() {
		message := "Please enter a search query"
		if parsed.Kind == domain.QueryKindImage {
			message = "Please enter a search query before ::image"
		}
		logger.Debug("search: %q has nothing to search for", query)
		c.events.Toast(domain.ToastInfo, "Empty Search", message)
		return nil, domain.ErrEmptyQuery
	}
	if parsed.Kind == domain.QueryKindImage {
		location := domain.ImageSearchURL(parsed.Text, OriginDirect)
		logger.Debug("search: image mode, navigating to %s", location)
		if c.nav != nil {
			c.nav.Navigate(location)
		}
		return nil, &domain.RedirectError{Location: location}
	}

	page = max(page, 1)
	state := domain.PageState{Query: query, Page: page, PageSize: c.settings.PageSize}
	req, err := CompileQuery(parsed, state, c.settings.Sort)
	if err != nil {
		return nil, err
	}
	logger.Debug("search: q=%q filter=%q offset=%d limit=%d", req.Query, req.Filter, req.Offset, req.Limit)

	version := c.version.Add(1)
	requestID := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancelSearch != nil {
		c.cancelSearch()
	}
	c.cancelSearch = cancel
	c.mu.Unlock()

	location := domain.SearchURL(query, page)
	if push && c.nav != nil {
		c.nav.PushState(domain.HistoryState{Query: query, Page: page}, location)
	}

	resp, err := c.index.Search(ctx, req)
	if c.version.Load() != version {
		logger.Debug("search: request %s superseded", requestID)
		return nil, domain.ErrSuperseded
	}
	if err != nil {
		c.events.Toast(domain.ToastError, "Search Failed", "Could not reach the search engine.")
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	records := NormalizeHits(resp.Hits)
	state.TotalHits = resp.EstimatedTotalHits
	results := NarrowAll(records)
	result := &domain.ResultPage{
		Query:            query,
		RequestID:        requestID,
		Location:         location,
		Request:          req,
		State:            state,
		ProcessingTimeMs: resp.ProcessingTimeMs,
		Stats:            FormatStats(state, resp.ProcessingTimeMs),
		Results:          results,
		Records:          records,
		Cards:            BuildCards(results, query, page),
		Gallery:          CollectGallery(records),
		Pagination:       BuildPageBar(page, state.TotalPages()),
	}

	c.mu.Lock()
	if c.version.Load() != version {
		c.mu.Unlock()
		return nil, domain.ErrSuperseded
	}
	c.current = result
	if c.cancelSummary != nil {
		c.cancelSummary()
		c.cancelSummary = nil
	}
	c.mu.Unlock()

	logger.Debug("search: %d of %d hits in %dms", len(records), state.TotalHits, resp.ProcessingTimeMs)
	if c.observer != nil {
		c.observer.SetResultsActive(true)
	}
	c.events.Emit(domain.Event{Kind: domain.EventResultsRendered, Payload: result})

	if len(records) > 0 {
		if c.history != nil {
			c.history.Add(ctx, query)
		}
		c.startSummary(ctx, version, query, records)
	}
	return result, nil
}

// startSummary schedules summary generation for the page. It outlives the
// search call and is cancelled by the next search or by Home. A search that
// has already been superseded schedules nothing.
func (c *SearchController) startSummary(ctx context.Context, version uint64, query string, records []domain.Record) {
	if c.summaries == nil || !c.summarySettings.Enabled {
		return
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Lock()
	if c.version.Load() != version {
		c.mu.Unlock()
		cancel()
		return
	}
	if c.cancelSummary != nil {
		c.cancelSummary()
	}
	c.cancelSummary = cancel
	c.mu.Unlock()

	delay := c.summarySettings.Delay
	go func() {
		defer cancel()
		if !c.summaries.Available(sctx) {
			logger.Debug("search: LLM unavailable, skipping summary")
			return
		}

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-sctx.Done():
			return
		}

		if _, err := c.summaries.Generate(sctx, query, records, false, nil); err != nil && sctx.Err() == nil {
			logger.Warn("search: summary for %q failed: %v", query, err)
		}
	}()
}

// SearchImages runs the gallery search. A trailing ::image is accepted.
func (c *SearchController) SearchImages(ctx context.Context, query string, page int) (*domain.ImagePage, error) {
	text := strings.TrimSpace(query)
	if parsed := ParseQuery(text); parsed.Kind == domain.QueryKindImage {
		text = parsed.Text
	}
	if text == "" {
		return nil, domain.ErrEmptyQuery
	}

	page = max(page, 1)
	state := domain.PageState{Query: text, Page: page, PageSize: c.settings.ImagePageSize}
	req := CompileImageQuery(text, state)

	logger.Section("Image Search")
	resp, err := c.index.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching images for %q: %w", text, err)
	}
	state.TotalHits = resp.EstimatedTotalHits

	location := domain.ImageSearchURL(text, OriginDirect)
	if page > 1 {
		location += fmt.Sprintf("&page=%d", page)
	}
	return &domain.ImagePage{
		Query:      text,
		Location:   location,
		State:      state,
		Images:     CollectGallery(NormalizeHits(resp.Hits)),
		Pagination: BuildPageBar(page, state.TotalPages()),
	}, nil
}

// GalleryLocation is where the gallery's "view more" link leads.
func GalleryLocation(query string) string {
	return domain.ImageSearchURL(query, OriginGallery)
}

// Explore loads one batch of the document browser starting at offset.
// A batch requested while another is loading returns ErrBusy.
func (c *SearchController) Explore(ctx context.Context, filter domain.ExploreFilter, sort domain.SortOrder, offset int) (*domain.ExplorePage, error) {
	if !c.exploring.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer c.exploring.Store(false)

	if !sort.IsValid() {
		sort = domain.SortRecent
	}
	if filter == "" {
		filter = domain.ExploreAll
	}
	limit := c.settings.ExplorePageSize
	req := CompileExplore(filter, sort, max(offset, 0), limit)

	logger.Section("Explore")
	logger.Debug("explore: filter=%q sort=%s offset=%d", req.Filter, sort, req.Offset)
	resp, err := c.index.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("exploring %s: %w", filter, err)
	}

	records := NormalizeHits(resp.Hits)
	return &domain.ExplorePage{
		Filter:    filter,
		Sort:      sort,
		Offset:    req.Offset,
		Total:     resp.EstimatedTotalHits,
		AllLoaded: len(resp.Hits) < limit,
		Cards:     BuildCards(NarrowAll(records), "", 0),
	}, nil
}
