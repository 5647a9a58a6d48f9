package mcp

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	page       *domain.ResultPage
	images     *domain.ImagePage
	validation domain.Validation
	err        error

	forced []bool
}

var _ driving.SearchService = (*mockSearchService)(nil)

func (m *mockSearchService) Search(_ context.Context, query string, page int, force bool) (*domain.ResultPage, error) {
	m.forced = append(m.forced, force)
	if m.err != nil {
		return nil, m.err
	}
	if m.page != nil {
		return m.page, nil
	}
	return &domain.ResultPage{Query: query, State: domain.PageState{Query: query, Page: page, PageSize: 10}}, nil
}

func (m *mockSearchService) SearchImages(context.Context, string, int) (*domain.ImagePage, error) {
	if m.images == nil {
		return &domain.ImagePage{}, nil
	}
	return m.images, nil
}

func (m *mockSearchService) Explore(context.Context, domain.ExploreFilter, domain.SortOrder, int) (*domain.ExplorePage, error) {
	return &domain.ExplorePage{}, nil
}

func (m *mockSearchService) Validate(string) domain.Validation { return m.validation }

func (m *mockSearchService) Current() *domain.ResultPage { return m.page }

func (m *mockSearchService) GoToPage(context.Context, int) (*domain.ResultPage, error) {
	return m.page, m.err
}

func (m *mockSearchService) PopState(context.Context, *domain.HistoryState, string) (*domain.ResultPage, error) {
	return m.page, m.err
}

func (m *mockSearchService) Home() {}

// mockSummaryService is a mock implementation of driving.SummaryService.
type mockSummaryService struct {
	view      domain.SummaryView
	err       error
	available bool

	refreshed bool
	records   int
}

var _ driving.SummaryService = (*mockSummaryService)(nil)

func (m *mockSummaryService) Generate(_ context.Context, _ string, records []domain.Record, forceRefresh bool, _ func(domain.SummaryView)) (domain.SummaryView, error) {
	m.refreshed = forceRefresh
	m.records = len(records)
	return m.view, m.err
}

func (m *mockSummaryService) Available(context.Context) bool { return m.available }

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	history []string
	loaded  bool
}

var _ driving.HistoryService = (*mockHistoryService)(nil)

func (m *mockHistoryService) Load(context.Context) { m.loaded = true }

func (m *mockHistoryService) Add(_ context.Context, q string) { m.history = append(m.history, q) }

func (m *mockHistoryService) List() []string { return m.history }

func (m *mockHistoryService) Clear(context.Context) error { return nil }

func (m *mockHistoryService) EnhancementEnabled() bool { return false }

func (m *mockHistoryService) SetEnhancementEnabled(context.Context, bool) error { return nil }

// mockRecommendationService is a mock implementation of driving.RecommendationService.
type mockRecommendationService struct {
	recs []domain.Recommendation
	err  error
}

var _ driving.RecommendationService = (*mockRecommendationService)(nil)

func (m *mockRecommendationService) Recommendations(context.Context) ([]domain.Recommendation, error) {
	return m.recs, m.err
}

func (m *mockRecommendationService) Refresh(ctx context.Context) ([]domain.Recommendation, error) {
	return m.Recommendations(ctx)
}

// mockViewerService is a mock implementation of driving.ViewerService.
type mockViewerService struct {
	doc     *domain.Document
	kind    domain.ViewerKind
	article *domain.ZimArticle
	err     error
}

var _ driving.ViewerService = (*mockViewerService)(nil)

func (m *mockViewerService) Open(context.Context, string) (*domain.Document, domain.ViewerKind, error) {
	return m.doc, m.kind, m.err
}

func (m *mockViewerService) ZimArticle(context.Context, *domain.Document) (*domain.ZimArticle, error) {
	return m.article, nil
}

func (m *mockViewerService) RouteLink(string) domain.LinkAction {
	return domain.LinkAction{}
}
