package web

import (
	"context"
	"io"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

type mockSearchService struct {
	page      *domain.ResultPage
	images    *domain.ImagePage
	err       error
	locations []string
	forced    []bool
}

func (m *mockSearchService) Search(_ context.Context, q string, page int, force bool) (*domain.ResultPage, error) {
	m.forced = append(m.forced, force)
	if m.err != nil {
		return nil, m.err
	}
	if m.page != nil {
		return m.page, nil
	}
	return &domain.ResultPage{Query: q, State: domain.PageState{Query: q, Page: page, PageSize: 10}}, nil
}

func (m *mockSearchService) SearchImages(_ context.Context, q string, page int) (*domain.ImagePage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.images != nil {
		return m.images, nil
	}
	return &domain.ImagePage{Query: q, State: domain.PageState{Query: q, Page: page, PageSize: 10}}, nil
}

func (m *mockSearchService) Explore(context.Context, domain.ExploreFilter, domain.SortOrder, int) (*domain.ExplorePage, error) {
	return &domain.ExplorePage{}, nil
}

func (m *mockSearchService) Validate(string) domain.Validation { return domain.Validation{} }

func (m *mockSearchService) Current() *domain.ResultPage { return m.page }

func (m *mockSearchService) GoToPage(ctx context.Context, page int) (*domain.ResultPage, error) {
	return m.Search(ctx, "", page, true)
}

func (m *mockSearchService) PopState(ctx context.Context, _ *domain.HistoryState, location string) (*domain.ResultPage, error) {
	m.locations = append(m.locations, location)
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *mockSearchService) Home() {}

type mockSummaryService struct {
	available bool
	view      domain.SummaryView
	err       error
	refreshed []bool
}

func (m *mockSummaryService) Generate(_ context.Context, _ string, _ []domain.Record, force bool, _ func(domain.SummaryView)) (domain.SummaryView, error) {
	m.refreshed = append(m.refreshed, force)
	return m.view, m.err
}

func (m *mockSummaryService) Available(context.Context) bool { return m.available }

type mockViewerService struct {
	doc     *domain.Document
	kind    domain.ViewerKind
	article *domain.ZimArticle
	err     error
	action  domain.LinkAction
}

func (m *mockViewerService) Open(context.Context, string) (*domain.Document, domain.ViewerKind, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.doc, m.kind, nil
}

func (m *mockViewerService) ZimArticle(context.Context, *domain.Document) (*domain.ZimArticle, error) {
	return m.article, nil
}

func (m *mockViewerService) RouteLink(string) domain.LinkAction { return m.action }

// fakeDocumentAPI serves one document and its article to a real viewer.
type fakeDocumentAPI struct {
	doc     *domain.Document
	article string
}

func (f *fakeDocumentAPI) Document(context.Context, string) (*domain.Document, error) {
	if f.doc == nil {
		return nil, domain.ErrNotFound
	}
	return f.doc, nil
}

func (f *fakeDocumentAPI) ZimArticle(context.Context, domain.ZimLocation) (string, error) {
	return f.article, nil
}

func (f *fakeDocumentAPI) ZimImage(context.Context, string, string) (io.ReadCloser, string, error) {
	return io.NopCloser(strings.NewReader("")), "image/png", nil
}
