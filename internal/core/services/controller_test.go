package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
)

// --- Mock implementations for controller testing ---

// mockSearchIndex implements driven.SearchIndex for testing.
type mockSearchIndex struct {
	mu       sync.Mutex
	resp     *domain.SearchResponse
	err      error
	fn       func(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
	requests []domain.SearchRequest
}

func (m *mockSearchIndex) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn, resp, err := m.fn, m.resp, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &domain.SearchResponse{}, nil
	}
	return resp, nil
}

func (m *mockSearchIndex) calls() []domain.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SearchRequest(nil), m.requests...)
}

var _ driven.Navigator = (*mockNavigator)(nil)

// mockNavigator implements driven.Navigator for testing.
type mockNavigator struct {
	mu        sync.Mutex
	pushed    []string
	states    []domain.HistoryState
	navigated []string
}

func (m *mockNavigator) PushState(state domain.HistoryState, location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
	m.pushed = append(m.pushed, location)
}

func (m *mockNavigator) Navigate(location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigated = append(m.navigated, location)
}

// mockSummaryService implements driving.SummaryService for testing.
type mockSummaryService struct {
	available bool
	generated chan string
	checked   chan struct{}
}

func (m *mockSummaryService) Generate(_ context.Context, query string, _ []domain.Record, _ bool, _ func(domain.SummaryView)) (domain.SummaryView, error) {
	m.generated <- query
	return domain.SummaryView{Phase: domain.SummaryComplete}, nil
}

func (m *mockSummaryService) Available(_ context.Context) bool {
	if m.checked != nil {
		select {
		case m.checked <- struct{}{}:
		default:
		}
	}
	return m.available
}

// resultsObserver records SetResultsActive calls.
type resultsObserver struct {
	mu     sync.Mutex
	states []bool
}

func (o *resultsObserver) SetResultsActive(active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, active)
}

func threeHits() *domain.SearchResponse {
	size := int64(2048)
	return &domain.SearchResponse{
		Hits: []domain.Record{
			{ID: "d1", Filename: "cluster.pdf", FileType: ".pdf", Content: "kubernetes cluster", FileSize: &size},
			{ID: "d2", Filename: "notes.md", FileType: ".md", Content: "pods"},
			{ID: "d3", Filename: "diagram.png", FileType: ".png"},
		},
		EstimatedTotalHits: 25,
		ProcessingTimeMs:   4,
	}
}

func newTestController(idx *mockSearchIndex) (*SearchController, *mockNavigator) {
	nav := &mockNavigator{}
	return NewSearchController(idx, nav, NewEmitter(), domain.SearchSettings{}), nav
}

// --- Tests ---

func TestSearchController_SimpleSearch(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, nav := newTestController(idx)

	page, err := c.Search(context.Background(), "kubernetes::pdf", 1, false)
	require.NoError(t, err)

	reqs := idx.calls()
	require.Len(t, reqs, 1)
	assert.Equal(t, "kubernetes", reqs[0].Query)
	assert.Equal(t, `file_type = ".pdf"`, reqs[0].Filter)
	assert.Equal(t, []string{"uploaded_at:desc"}, reqs[0].Sort)
	assert.Equal(t, 10, reqs[0].Limit)
	assert.Equal(t, 0, reqs[0].Offset)

	assert.Equal(t, []string{"/?q=kubernetes%3A%3Apdf&page=1"}, nav.pushed)
	assert.Equal(t, domain.HistoryState{Query: "kubernetes::pdf", Page: 1}, nav.states[0])

	assert.Equal(t, "/?q=kubernetes%3A%3Apdf&page=1", page.Location)
	assert.NotEmpty(t, page.RequestID)
	assert.Len(t, page.Records, 3)
	assert.Len(t, page.Cards, 3)
	assert.Equal(t, 25, page.State.TotalHits)
	assert.Equal(t, 3, page.State.TotalPages())
	assert.Same(t, page, c.Current())
}

func TestSearchController_ImageQueryNavigates(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, nav := newTestController(idx)

	page, err := c.Search(context.Background(), "cats::image", 1, false)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, domain.ErrImageMode)

	var redirect *domain.RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, "/images?q=cats&source=direct", redirect.Location)
	assert.Equal(t, []string{"/images?q=cats&source=direct"}, nav.navigated)
	assert.Empty(t, idx.calls())
	assert.Empty(t, nav.pushed)
}

func TestSearchController_EmptyQuery(t *testing.T) {
	events := NewEmitter()
	var toasts []domain.Event
	events.Subscribe(func(ev domain.Event) {
		if ev.Kind == domain.EventToast {
			toasts = append(toasts, ev)
		}
	})
	idx := &mockSearchIndex{}
	c := NewSearchController(idx, nil, events, domain.SearchSettings{})

	_, err := c.Search(context.Background(), "   ", 1, false)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	assert.Empty(t, idx.calls())
	require.Len(t, toasts, 1)
	assert.Equal(t, domain.ToastInfo, toasts[0].Level)
}

func TestSearchController_NothingToSearchFor(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"image without text", "::image", "Please enter a search query before ::image"},
		{"bare separator", "::", "Please enter a search query"},
		{"operators only", "::&& ::||", "Please enter a search query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := NewEmitter()
			var toasts []domain.Event
			events.Subscribe(func(ev domain.Event) {
				if ev.Kind == domain.EventToast {
					toasts = append(toasts, ev)
				}
			})
			idx := &mockSearchIndex{resp: threeHits()}
			nav := &mockNavigator{}
			c := NewSearchController(idx, nav, events, domain.SearchSettings{})

			page, err := c.Search(context.Background(), tt.query, 1, true)

			assert.Nil(t, page)
			assert.ErrorIs(t, err, domain.ErrEmptyQuery)
			assert.Empty(t, idx.calls())
			assert.Empty(t, nav.pushed)
			assert.Empty(t, nav.navigated)
			require.Len(t, toasts, 1)
			assert.Equal(t, "Empty Search", toasts[0].Title)
			assert.Equal(t, tt.message, toasts[0].Message)
		})
	}
}

func TestSearchController_ValidationGate(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, _ := newTestController(idx)

	_, err := c.Search(context.Background(), "cats::xyzzy", 1, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Diagnostics, 1)
	assert.Equal(t, domain.DiagInvalidFileType, verr.Diagnostics[0].Kind)
	assert.Empty(t, idx.calls())

	_, err = c.Search(context.Background(), "cats::xyzzy", 1, true)
	require.NoError(t, err)
	assert.Len(t, idx.calls(), 1)
}

func TestSearchController_SupersededResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	idx := &mockSearchIndex{}
	idx.fn = func(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
		if req.Query == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return threeHits(), nil
	}
	c, _ := newTestController(idx)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), "slow", 1, false)
		errc <- err
	}()
	<-started

	page, err := c.Search(context.Background(), "fast", 1, false)
	require.NoError(t, err)
	assert.Equal(t, "fast", page.Query)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, domain.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded search did not return")
	}
	assert.Equal(t, "fast", c.Current().Query)
}

func TestSearchController_SearchFailure(t *testing.T) {
	idx := &mockSearchIndex{err: domain.ErrSearchUnavailable}
	c, _ := newTestController(idx)

	_, err := c.Search(context.Background(), "kubernetes", 1, false)
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.Nil(t, c.Current())
}

func TestSearchController_HistoryOnlyWithResults(t *testing.T) {
	idx := &mockSearchIndex{resp: &domain.SearchResponse{}}
	c, _ := newTestController(idx)
	hist := NewHistoryTracker(nil, nil)
	c.SetHistoryService(hist)

	_, err := c.Search(context.Background(), "nothing here", 1, false)
	require.NoError(t, err)
	assert.Empty(t, hist.List())

	idx.resp = threeHits()
	_, err = c.Search(context.Background(), "kubernetes", 1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"kubernetes"}, hist.List())
}

func TestSearchController_TriggersSummary(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, _ := newTestController(idx)
	summaries := &mockSummaryService{available: true, generated: make(chan string, 1)}
	c.SetSummaryService(summaries, domain.SummarySettings{Enabled: true, Delay: time.Millisecond})

	_, err := c.Search(context.Background(), "kubernetes", 1, false)
	require.NoError(t, err)

	select {
	case q := <-summaries.generated:
		assert.Equal(t, "kubernetes", q)
	case <-time.After(2 * time.Second):
		t.Fatal("summary was not generated")
	}
}

func TestSearchController_SummarySkippedWhenUnavailable(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, _ := newTestController(idx)
	summaries := &mockSummaryService{available: false, generated: make(chan string, 1)}
	c.SetSummaryService(summaries, domain.SummarySettings{Enabled: true})

	_, err := c.Search(context.Background(), "kubernetes", 1, false)
	require.NoError(t, err)

	select {
	case <-summaries.generated:
		t.Fatal("summary generated while LLM unavailable")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSearchController_SummaryAvailabilityCheckedBeforeDelay(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, _ := newTestController(idx)
	summaries := &mockSummaryService{available: false, generated: make(chan string, 1), checked: make(chan struct{}, 1)}
	c.SetSummaryService(summaries, domain.SummarySettings{Enabled: true, Delay: time.Hour})
	defer c.Home()

	_, err := c.Search(context.Background(), "kubernetes", 1, false)
	require.NoError(t, err)

	select {
	case <-summaries.checked:
	case <-time.After(2 * time.Second):
		t.Fatal("availability not checked before the delay elapsed")
	}
}

func TestSearchController_SupersededSearchSchedulesNoSummary(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, _ := newTestController(idx)
	summaries := &mockSummaryService{available: true, generated: make(chan string, 1), checked: make(chan struct{}, 1)}
	c.SetSummaryService(summaries, domain.SummarySettings{Enabled: true, Delay: time.Millisecond})

	stale := c.version.Add(1)
	c.version.Add(1)
	c.startSummary(context.Background(), stale, "old query", threeHits().Hits)

	c.mu.Lock()
	assert.Nil(t, c.cancelSummary)
	c.mu.Unlock()

	select {
	case <-summaries.checked:
		t.Fatal("superseded search started a summary")
	case <-summaries.generated:
		t.Fatal("superseded search generated a summary")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSearchController_GoToPage(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, nav := newTestController(idx)
	ctx := context.Background()

	_, err := c.GoToPage(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.Search(ctx, "kubernetes", 1, false)
	require.NoError(t, err)

	page, err := c.GoToPage(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page.State.Page)
	assert.Equal(t, 20, idx.calls()[1].Offset)
	assert.Equal(t, "/?q=kubernetes&page=3", nav.pushed[1])

	_, err = c.GoToPage(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchController_PopState(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, nav := newTestController(idx)
	observer := &resultsObserver{}
	c.SetResultsViewObserver(observer)
	ctx := context.Background()

	page, err := c.PopState(ctx, &domain.HistoryState{Query: "taxes", Page: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, "taxes", page.Query)
	assert.Equal(t, 2, page.State.Page)

	page, err = c.PopState(ctx, nil, "/?q=kubernetes%3A%3Apdf&page=3")
	require.NoError(t, err)
	assert.Equal(t, "kubernetes::pdf", page.Query)
	assert.Equal(t, 3, page.State.Page)
	assert.Empty(t, nav.pushed)

	page, err = c.PopState(ctx, nil, "/")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Nil(t, c.Current())
	assert.Equal(t, []bool{true, true, false}, observer.states)
}

func TestSearchController_SearchImages(t *testing.T) {
	size := int64(10)
	idx := &mockSearchIndex{resp: &domain.SearchResponse{
		Hits: []domain.Record{
			{ID: "i1", Filename: "cat.png", FileType: ".png", FileSize: &size},
			{ID: "d1", Filename: "report.pdf", FileType: ".pdf", HasImages: true, AllImages: []string{"/img/report_page_2_1.png"}},
		},
		EstimatedTotalHits: 2,
	}}
	c, _ := newTestController(idx)

	page, err := c.SearchImages(context.Background(), "cats::image", 1)
	require.NoError(t, err)

	req := idx.calls()[0]
	assert.Equal(t, "cats", req.Query)
	assert.Equal(t, domain.HasImagesFilter, req.Filter)
	assert.Equal(t, domain.ImagePageSize, req.Limit)
	assert.Equal(t, "/images?q=cats&source=direct", page.Location)
	assert.NotEmpty(t, page.Images)

	_, err = c.SearchImages(context.Background(), " ", 1)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestSearchController_Explore(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, _ := newTestController(idx)

	page, err := c.Explore(context.Background(), "pdf", domain.SortName, 40)
	require.NoError(t, err)

	req := idx.calls()[0]
	assert.Equal(t, "", req.Query)
	assert.Equal(t, domain.ExplorePageSize, req.Limit)
	assert.Equal(t, 40, req.Offset)
	assert.Equal(t, []string{"filename:asc"}, req.Sort)
	assert.True(t, page.AllLoaded)
	assert.Len(t, page.Cards, 3)
	assert.Equal(t, 25, page.Total)
}

func TestSearchController_ExploreBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	idx := &mockSearchIndex{}
	idx.fn = func(context.Context, domain.SearchRequest) (*domain.SearchResponse, error) {
		close(started)
		<-release
		return threeHits(), nil
	}
	c, _ := newTestController(idx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Explore(context.Background(), domain.ExploreAll, domain.SortRecent, 0)
	}()
	<-started

	_, err := c.Explore(context.Background(), domain.ExploreAll, domain.SortRecent, 40)
	assert.ErrorIs(t, err, domain.ErrBusy)
	close(release)
	<-done
}

func TestSearchController_Home(t *testing.T) {
	idx := &mockSearchIndex{resp: threeHits()}
	c, nav := newTestController(idx)

	_, err := c.Search(context.Background(), "kubernetes", 1, false)
	require.NoError(t, err)

	c.Home()
	assert.Nil(t, c.Current())
	assert.Equal(t, "/", nav.pushed[len(nav.pushed)-1])
}
