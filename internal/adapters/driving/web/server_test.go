package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, ports *Ports, backend string) *Server {
	t.Helper()
	s, err := NewServer(ports, Config{BackendURL: backend})
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_MissingSearch(t *testing.T) {
	_, err := NewServer(&Ports{}, Config{})
	assert.ErrorIs(t, err, ErrMissingSearchService)

	_, err = NewServer(nil, Config{})
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, &Ports{Search: &mockSearchService{}}, "")

	rec := get(t, s, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestServer_RequestIDEchoed(t *testing.T) {
	s := newTestServer(t, &Ports{Search: &mockSearchService{}}, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestServer_Index(t *testing.T) {
	tests := []struct {
		name     string
		search   *mockSearchService
		target   string
		wantCode int
		contains string
	}{
		{
			name:     "home",
			search:   &mockSearchService{},
			target:   "/",
			wantCode: http.StatusOK,
			contains: "Search your documents",
		},
		{
			name: "results",
			search: &mockSearchService{page: &domain.ResultPage{
				Query: "tax",
				Stats: "1 result",
				Cards: []domain.ResultCard{{ID: "d1", Title: "<mark>Tax</mark> & forms", URL: "/view/d1?q=tax"}},
			}},
			target:   "/?q=tax&page=1",
			wantCode: http.StatusOK,
			contains: "<mark>Tax</mark> &amp; forms",
		},
		{
			name:     "image redirect",
			search:   &mockSearchService{err: &domain.RedirectError{Location: "/images?q=cats&source=search"}},
			target:   "/?q=cats::image",
			wantCode: http.StatusFound,
		},
		{
			name:     "backend down",
			search:   &mockSearchService{err: domain.ErrSearchUnavailable},
			target:   "/?q=tax",
			wantCode: http.StatusServiceUnavailable,
			contains: "search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &Ports{Search: tt.search}, "")

			rec := get(t, s, tt.target)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			require.Len(t, tt.search.locations, 1)
			assert.Equal(t, tt.target, tt.search.locations[0])
		})
	}
}

func TestServer_Index_Redirect(t *testing.T) {
	search := &mockSearchService{err: &domain.RedirectError{Location: "/images?q=cats&source=search"}}
	s := newTestServer(t, &Ports{Search: search}, "")

	rec := get(t, s, "/?q=cats::image")

	assert.Equal(t, "/images?q=cats&source=search", rec.Header().Get("Location"))
}

func TestServer_Images(t *testing.T) {
	search := &mockSearchService{images: &domain.ImagePage{
		Query: "cats",
		Images: []domain.GalleryImage{{
			Src:        "/api/images/a.png",
			ModalSrc:   "/api/images/a.png",
			DocName:    "cats.pdf",
			ImageIndex: 2,
			Lineage:    domain.LineagePDFPage,
		}},
	}}
	s := newTestServer(t, &Ports{Search: search}, "")

	rec := get(t, s, "/images?q=cats")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page 2")
	assert.Contains(t, rec.Body.String(), "/api/images/a.png")
}

func TestServer_View(t *testing.T) {
	tests := []struct {
		name     string
		viewer   *mockViewerService
		wantCode int
		contains string
	}{
		{
			name: "text document",
			viewer: &mockViewerService{
				doc:  &domain.Document{Record: domain.Record{ID: "d1", Filename: "notes.txt", Content: "hello <world>"}},
				kind: domain.ViewerText,
			},
			wantCode: http.StatusOK,
			contains: "hello &lt;world&gt;",
		},
		{
			name: "zim article",
			viewer: &mockViewerService{
				doc:     &domain.Document{Record: domain.Record{ID: "z1"}},
				kind:    domain.ViewerZim,
				article: &domain.ZimArticle{HTML: "<html><body>Article</body></html>"},
			},
			wantCode: http.StatusOK,
			contains: `srcdoc="&lt;html&gt;&lt;body&gt;Article&lt;/body&gt;&lt;/html&gt;"`,
		},
		{
			name:     "not found",
			viewer:   &mockViewerService{err: domain.ErrNotFound},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "locked",
			viewer:   &mockViewerService{err: domain.ErrAuthRequired},
			wantCode: http.StatusUnauthorized,
			contains: "vault",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &Ports{Search: &mockSearchService{}, Viewer: tt.viewer}, "")

			rec := get(t, s, "/view/d1?q=notes&page=2")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestServer_View_ZimArticleIsSandboxed(t *testing.T) {
	api := &fakeDocumentAPI{
		doc: &domain.Document{Record: domain.Record{
			ID:       "doc1",
			Filename: "Lion",
			FileType: ".zim",
			FilePath: "zim://wiki.zim#A/Lion",
		}},
		article: `<script>fetch('/mcp')</script><a href="../Big_Cat">Big cat</a>`,
	}
	viewer := services.NewDocumentViewer(api)
	s := newTestServer(t, &Ports{Search: &mockSearchService{}, Viewer: viewer}, "")

	rec := get(t, s, "/view/doc1")
	body := rec.Body.String()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'nonce-")
	assert.Contains(t, body, `sandbox="allow-same-origin"`)
	assert.Contains(t, body, `srcdoc="`)
	assert.NotContains(t, body, "fetch(")
	assert.NotContains(t, body, `<a href="../Big_Cat">`)
	assert.Contains(t, body, "/link?href=..%2FBig_Cat")
	assert.Contains(t, body, "ResizeObserver")
}

func TestServer_View_ArticleLinkRoundTrip(t *testing.T) {
	viewer := services.NewDocumentViewer(&fakeDocumentAPI{})
	s := newTestServer(t, &Ports{Search: &mockSearchService{}, Viewer: viewer}, "")

	rec := get(t, s, "/link?href=..%2FBig_Cat")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/?q=Big%20Cat::zim", rec.Header().Get("Location"))
}

func TestServer_View_BackLink(t *testing.T) {
	viewer := &mockViewerService{
		doc:  &domain.Document{Record: domain.Record{ID: "d1", Filename: "notes.txt"}},
		kind: domain.ViewerText,
	}
	s := newTestServer(t, &Ports{Search: &mockSearchService{}, Viewer: viewer}, "")

	rec := get(t, s, "/view/d1?q=notes&page=2")

	assert.Contains(t, rec.Body.String(), `href="/?q=notes&amp;page=2"`)
}

func TestServer_Link(t *testing.T) {
	tests := []struct {
		name     string
		action   domain.LinkAction
		wantCode int
		location string
	}{
		{"external", domain.LinkAction{Kind: domain.LinkExternal, Target: "https://example.com"}, http.StatusFound, "https://example.com"},
		{"search", domain.LinkAction{Kind: domain.LinkSearch, Target: "/?q=Rome&page=1", Query: "Rome"}, http.StatusFound, "/?q=Rome&page=1"},
		{"ignored", domain.LinkAction{Kind: domain.LinkIgnore}, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viewer := &mockViewerService{action: tt.action}
			s := newTestServer(t, &Ports{Search: &mockSearchService{}, Viewer: viewer}, "")

			rec := get(t, s, "/link?href=x")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestServer_ZimImageProxy(t *testing.T) {
	var gotQuery string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNG")) //nolint:errcheck
	}))
	defer backend.Close()

	s := newTestServer(t, &Ports{Search: &mockSearchService{}}, backend.URL)

	rec := get(t, s, "/api/zim/image?path=wiki.zim&img=I%2Fcat.png")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PNG", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "path=wiki.zim&img=I%2Fcat.png", gotQuery)
}

func TestServer_ZimImageProxy_Errors(t *testing.T) {
	t.Run("no backend", func(t *testing.T) {
		s := newTestServer(t, &Ports{Search: &mockSearchService{}}, "")

		rec := get(t, s, "/api/zim/image?path=a&img=b")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("upstream missing", func(t *testing.T) {
		backend := httptest.NewServer(http.NotFoundHandler())
		defer backend.Close()
		s := newTestServer(t, &Ports{Search: &mockSearchService{}}, backend.URL)

		rec := get(t, s, "/api/zim/image?path=a&img=b")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_SummaryJSON(t *testing.T) {
	records := []domain.Record{{ID: "d1", Filename: "a.pdf"}}

	tests := []struct {
		name     string
		summary  *mockSummaryService
		page     *domain.ResultPage
		target   string
		wantCode int
		refresh  []bool
	}{
		{
			name:     "generated",
			summary:  &mockSummaryService{available: true, view: domain.SummaryView{Phase: domain.SummaryComplete, HTML: "<p>ok</p>"}},
			page:     &domain.ResultPage{Query: "tax", Records: records},
			target:   "/api/summary?q=tax",
			wantCode: http.StatusOK,
			refresh:  []bool{false},
		},
		{
			name:     "refresh",
			summary:  &mockSummaryService{available: true},
			page:     &domain.ResultPage{Query: "tax", Records: records},
			target:   "/api/summary?q=tax&refresh=1",
			wantCode: http.StatusOK,
			refresh:  []bool{true},
		},
		{
			name:     "llm offline",
			summary:  &mockSummaryService{},
			page:     &domain.ResultPage{Query: "tax", Records: records},
			target:   "/api/summary?q=tax",
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "no results",
			summary:  &mockSummaryService{available: true},
			page:     &domain.ResultPage{Query: "tax"},
			target:   "/api/summary?q=tax",
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &mockSearchService{page: tt.page}
			s := newTestServer(t, &Ports{Search: search, Summary: tt.summary}, "")

			rec := get(t, s, tt.target)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.refresh, tt.summary.refreshed)
			assert.Equal(t, []bool{true}, search.forced)
		})
	}
}

func TestServer_SummaryPage(t *testing.T) {
	summary := &mockSummaryService{available: true, view: domain.SummaryView{
		Phase:     domain.SummaryComplete,
		HTML:      "<p><strong>Done</strong></p>",
		FromCache: true,
	}}
	search := &mockSearchService{page: &domain.ResultPage{Query: "tax", Records: []domain.Record{{ID: "d1"}}}}
	s := newTestServer(t, &Ports{Search: search, Summary: summary}, "")

	rec := get(t, s, "/summary?q=tax")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>Done</strong>")
	assert.Contains(t, rec.Body.String(), "Regenerate")
}

func TestServer_SearchJSON(t *testing.T) {
	t.Run("page", func(t *testing.T) {
		search := &mockSearchService{}
		s := newTestServer(t, &Ports{Search: search}, "")

		rec := get(t, s, "/api/search?q=tax&page=3&force=1")

		require.Equal(t, http.StatusOK, rec.Code)
		var page struct {
			Query string           `json:"query"`
			State domain.PageState `json:"state"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, "tax", page.Query)
		assert.Equal(t, 3, page.State.Page)
		assert.Equal(t, []bool{true}, search.forced)
	})

	t.Run("validation", func(t *testing.T) {
		search := &mockSearchService{err: &domain.ValidationError{
			Query:       "tax::pdff",
			Diagnostics: []domain.Diagnostic{{Message: "unknown type", Suggestion: "pdf"}},
		}}
		s := newTestServer(t, &Ports{Search: search}, "")

		rec := get(t, s, "/api/search?q=tax::pdff")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "diagnostics")
	})

	t.Run("redirect", func(t *testing.T) {
		search := &mockSearchService{err: &domain.RedirectError{Location: "/images?q=cats&source=search"}}
		s := newTestServer(t, &Ports{Search: search}, "")

		rec := get(t, s, "/api/search?q=cats::image")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "redirect")
	})
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<mark>go</mark>lang", "<mark>go</mark>lang"},
		{"<script>x</script><mark>a</mark>", "x<mark>a</mark>"},
		{"a &amp; b", "a &amp; b"},
		{"1 < 2", "1 &lt; 2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, string(highlight(tt.in)))
		})
	}
}

func TestServer_MountsMCP(t *testing.T) {
	var hit string
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = r.Method
		w.WriteHeader(http.StatusAccepted)
	})
	s, err := NewServer(&Ports{Search: &mockSearchService{}}, Config{MCP: mcpHandler})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, http.MethodPost, hit)

	without := newTestServer(t, &Ports{Search: &mockSearchService{}}, "")
	assert.Equal(t, http.StatusNotFound, get(t, without, "/mcp").Code)
}
