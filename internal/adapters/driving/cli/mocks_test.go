package cli

import (
	"bytes"
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// MockSearchService implements driving.SearchService for command tests.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, query string, page int, force bool) (*domain.ResultPage, error)
	images     *domain.ImagePage
	explore    *domain.ExplorePage
	validation domain.Validation

	queries []string
	pages   []int
}

func (m *MockSearchService) Search(ctx context.Context, query string, page int, force bool) (*domain.ResultPage, error) {
	m.queries = append(m.queries, query)
	m.pages = append(m.pages, page)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, page, force)
	}
	return &domain.ResultPage{
		Query:   query,
		Stats:   "1 result (3ms)",
		State:   domain.PageState{Query: query, Page: page, PageSize: 10, TotalHits: 1},
		Records: []domain.Record{{ID: "d1", Filename: "guide.pdf"}},
		Cards: []domain.ResultCard{{
			ID:          "d1",
			Title:       "Kubernetes <mark>guide</mark>",
			TypeLabel:   "PDF",
			SourceLabel: "Vault",
			SizeLabel:   "1.2 MB",
			URL:         "/view/d1?q=guide",
		}},
	}, nil
}

func (m *MockSearchService) SearchImages(_ context.Context, query string, page int) (*domain.ImagePage, error) {
	if m.images != nil {
		return m.images, nil
	}
	return &domain.ImagePage{Query: query, State: domain.PageState{Query: query, Page: page, PageSize: 10}}, nil
}

func (m *MockSearchService) Explore(_ context.Context, filter domain.ExploreFilter, sort domain.SortOrder, offset int) (*domain.ExplorePage, error) {
	if m.explore != nil {
		return m.explore, nil
	}
	return &domain.ExplorePage{Filter: filter, Sort: sort, Offset: offset, AllLoaded: true}, nil
}

func (m *MockSearchService) Validate(string) domain.Validation { return m.validation }

func (m *MockSearchService) Current() *domain.ResultPage { return nil }

func (m *MockSearchService) GoToPage(ctx context.Context, page int) (*domain.ResultPage, error) {
	return m.Search(ctx, "", page, true)
}

func (m *MockSearchService) PopState(context.Context, *domain.HistoryState, string) (*domain.ResultPage, error) {
	return nil, nil
}

func (m *MockSearchService) Home() {}

// MockSummaryService implements driving.SummaryService.
type MockSummaryService struct {
	available bool
	view      domain.SummaryView
	err       error
	updates   []domain.SummaryView
	refreshed []bool
}

func (m *MockSummaryService) Generate(_ context.Context, _ string, _ []domain.Record, force bool, onUpdate func(domain.SummaryView)) (domain.SummaryView, error) {
	m.refreshed = append(m.refreshed, force)
	if onUpdate != nil {
		for _, u := range m.updates {
			onUpdate(u)
		}
	}
	return m.view, m.err
}

func (m *MockSummaryService) Available(context.Context) bool { return m.available }

// MockCacheService implements driving.CacheService.
type MockCacheService struct {
	entries []domain.CacheEntry
	removed int
	cleared []string
}

func (m *MockCacheService) Entries(context.Context) ([]domain.CacheEntry, error) { return m.entries, nil }

func (m *MockCacheService) Cleanup(context.Context) (int, error) { return m.removed, nil }

func (m *MockCacheService) ClearAll(context.Context) (int, error) { return len(m.entries), nil }

func (m *MockCacheService) Clear(_ context.Context, query string, _ []domain.Record) error {
	m.cleared = append(m.cleared, query)
	return nil
}

// MockHistoryService implements driving.HistoryService.
type MockHistoryService struct {
	history  []string
	enhanced bool
	cleared  bool
}

func (m *MockHistoryService) Load(context.Context) {}

func (m *MockHistoryService) Add(_ context.Context, q string) { m.history = append([]string{q}, m.history...) }

func (m *MockHistoryService) List() []string { return m.history }

func (m *MockHistoryService) Clear(context.Context) error {
	m.history = nil
	m.cleared = true
	return nil
}

func (m *MockHistoryService) EnhancementEnabled() bool { return m.enhanced }

func (m *MockHistoryService) SetEnhancementEnabled(_ context.Context, enabled bool) error {
	m.enhanced = enabled
	return nil
}

// MockRecommendationService implements driving.RecommendationService.
type MockRecommendationService struct {
	recs      []domain.Recommendation
	refreshed bool
}

func (m *MockRecommendationService) Recommendations(context.Context) ([]domain.Recommendation, error) {
	return m.recs, nil
}

func (m *MockRecommendationService) Refresh(context.Context) ([]domain.Recommendation, error) {
	m.refreshed = true
	return m.recs, nil
}

// MockSettingsService implements driving.SettingsService.
type MockSettingsService struct {
	values []domain.SettingValue
	set    map[string]string
	unset  []string
	err    error
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.GetDefaults()
	return &s, nil
}

func (m *MockSettingsService) Save(*domain.AppSettings) error { return nil }

func (m *MockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *MockSettingsService) Unset(key string) error {
	if m.err != nil {
		return m.err
	}
	m.unset = append(m.unset, key)
	return nil
}

func (m *MockSettingsService) Values() ([]domain.SettingValue, error) { return m.values, nil }

func (m *MockSettingsService) Validate() error { return m.err }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.AppSettings{} }

// MockStatusService implements driving.StatusService.
type MockStatusService struct {
	status domain.SystemStatus
}

func (m *MockStatusService) Status(context.Context) domain.SystemStatus { return m.status }

// MockViewerService implements driving.ViewerService.
type MockViewerService struct {
	doc  *domain.Document
	kind domain.ViewerKind
	err  error
}

func (m *MockViewerService) Open(context.Context, string) (*domain.Document, domain.ViewerKind, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.doc, m.kind, nil
}

func (m *MockViewerService) ZimArticle(context.Context, *domain.Document) (*domain.ZimArticle, error) {
	return &domain.ZimArticle{HTML: "<html><body><p>Article text</p></body></html>"}, nil
}

func (m *MockViewerService) RouteLink(string) domain.LinkAction { return domain.LinkAction{} }

// MockResultActionService implements driving.ResultActionService.
type MockResultActionService struct {
	opened []string
}

func (m *MockResultActionService) CopyToClipboard(context.Context, *domain.ResultCard) error { return nil }

func (m *MockResultActionService) OpenDocument(context.Context, *domain.ResultCard) error { return nil }

func (m *MockResultActionService) OpenURL(_ context.Context, location string) error {
	m.opened = append(m.opened, location)
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	search   *MockSearchService
	summary  *MockSummaryService
	cache    *MockCacheService
	history  *MockHistoryService
	recs     *MockRecommendationService
	settings *MockSettingsService
	status   *MockStatusService
	viewer   *MockViewerService
	actions  *MockResultActionService
}

// setupTestServices installs fresh mocks, resets command flags and returns
// a cleanup func that clears the services.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search:   &MockSearchService{},
		summary:  &MockSummaryService{available: true},
		cache:    &MockCacheService{},
		history:  &MockHistoryService{},
		recs:     &MockRecommendationService{},
		settings: &MockSettingsService{},
		status:   &MockStatusService{},
		viewer:   &MockViewerService{},
		actions:  &MockResultActionService{},
	}
	SetServices(&Services{
		Search:          ts.search,
		Summary:         ts.summary,
		Cache:           ts.cache,
		History:         ts.history,
		Recommendations: ts.recs,
		Settings:        ts.settings,
		Status:          ts.status,
		Viewer:          ts.viewer,
		ResultActions:   ts.actions,
	})
	resetFlags()

	return ts, func() {
		SetServices(nil)
		resetFlags()
	}
}

func resetFlags() {
	outputFormat = outputText
	searchPage, searchForce = 1, false
	imagesPage = 1
	exploreType, exploreSort, exploreOffset = string(domain.ExploreAll), string(domain.SortRecent), 0
	summaryRefresh, summaryStream, summaryForce = false, true, false
	recommendRefresh = false
	viewPrint, viewQuery, viewPage = false, "", 0
	serveAddr, serveMCP = "", false
	mcpPort, mcpHost = 0, "127.0.0.1"
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
