package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure DocumentViewer implements the interface.
var _ driving.ViewerService = (*DocumentViewer)(nil)

var (
	zimPathPattern  = regexp.MustCompile(`^zim://(.+?)#(.+)$`)
	articleSrcAttr  = regexp.MustCompile(`src=["']([^"']+)["']`)
	articleHrefAttr = regexp.MustCompile(`(\s)href=["']([^"']*)["']`)
	scriptElement   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>|<script\b[^>]*/?>`)
	parentDirPrefix = regexp.MustCompile(`\.\./`)
)

// LinkRoute is the local path article links are sent through.
const LinkRoute = "/link"

// articlePolicy blocks every script inside an article frame.
const articlePolicy = `<meta http-equiv="Content-Security-Policy" content="script-src 'none'; object-src 'none'; base-uri 'none'">`

// zimArticleStyle is the scoped dark theme applied inside article frames.
const zimArticleStyle = `  * { box-sizing: border-box; }
  body { background: #0d1117; color: #e6edf3; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif; line-height: 1.7; padding: 24px; margin: 0; word-wrap: break-word; }
  a { color: #2dd4bf; }
  img { max-width: 100%; height: auto; border-radius: 8px; margin: 12px 0; }
  table { border-collapse: collapse; width: 100%; margin: 16px 0; }
  th, td { border: 1px solid #30363d; padding: 8px 12px; text-align: left; }
  th { background: #161b22; }
  h1, h2, h3, h4 { color: #f0f6fc; border-bottom: 1px solid #21262d; padding-bottom: 8px; }
  pre, code { background: #161b22; padding: 2px 6px; border-radius: 4px; overflow-x: auto; }
  blockquote { border-left: 3px solid #2dd4bf; margin: 16px 0; padding: 8px 16px; color: #8b949e; }
  .mw-editsection, .noprint, .mw-jump-link, .navbox, .sistersitebox, .mw-authority-control { display: none !important; }
`

// DocumentViewer fetches documents and prepares them for their viewer.
type DocumentViewer struct {
	api driven.DocumentAPI
}

// NewDocumentViewer creates a document viewer.
func NewDocumentViewer(api driven.DocumentAPI) *DocumentViewer {
	return &DocumentViewer{api: api}
}

// Open fetches a document and picks its viewer.
func (v *DocumentViewer) Open(ctx context.Context, id string) (*domain.Document, domain.ViewerKind, error) {
	if strings.TrimSpace(id) == "" {
		return nil, "", fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	doc, err := v.api.Document(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("fetching document %s: %w", id, err)
	}
	kind := domain.ViewerFor(doc.Record)
	logger.Debug("viewer: document %s routed to %s viewer", id, kind)
	return doc, kind, nil
}

// ZimArticle fetches the article behind a ZIM document and wraps it for a
// sandboxed frame. When the location is unknown or the fetch fails, the
// indexed text is shown instead and Fallback is set.
func (v *DocumentViewer) ZimArticle(ctx context.Context, doc *domain.Document) (*domain.ZimArticle, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}
	loc := ZimLocationOf(doc)
	article := &domain.ZimArticle{Location: loc, Title: doc.Filename}

	if loc.IsZero() {
		logger.Debug("viewer: %s has no ZIM location, showing indexed text", doc.ID)
		article.HTML = indexedTextHTML(doc.Content)
		article.Fallback = true
		return article, nil
	}

	raw, err := v.api.ZimArticle(ctx, loc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetching ZIM article: %w", ctx.Err())
		}
		logger.Warn("viewer: ZIM article %s#%s unavailable: %v", loc.Archive, loc.ArticleURL, err)
		article.HTML = indexedTextHTML(doc.Content)
		article.Fallback = true
		return article, nil
	}

	article.HTML = WrapArticle(RewriteArticleLinks(RewriteArticleImages(raw, loc.Archive)))
	return article, nil
}

// ZimLocationOf derives the archive and article URL from a stored
// zim://<archive>#<url> path, falling back to the document's article URL.
func ZimLocationOf(doc *domain.Document) domain.ZimLocation {
	if m := zimPathPattern.FindStringSubmatch(doc.FilePath); m != nil {
		return domain.ZimLocation{Archive: m[1], ArticleURL: m[2]}
	}
	return domain.ZimLocation{ArticleURL: doc.ZimArticleURL}
}

// ZimImageURL routes an article image through the backend image proxy.
func ZimImageURL(archive, img string) string {
	return "/api/zim/image?path=" + domain.EncodeURIComponent(archive) + "&img=" + domain.EncodeURIComponent(img)
}

// RewriteArticleImages points every relative src attribute at the image
// proxy. Absolute, rooted and data: sources are kept.
func RewriteArticleImages(articleHTML, archive string) string {
	return articleSrcAttr.ReplaceAllStringFunc(articleHTML, func(match string) string {
		src := articleSrcAttr.FindStringSubmatch(match)[1]
		if strings.HasPrefix(src, "http") || strings.HasPrefix(src, "data:") || strings.HasPrefix(src, "/") {
			return match
		}
		return `src="` + ZimImageURL(archive, src) + `"`
	})
}

// RewriteArticleLinks sends every link except in-page fragments through
// LinkRoute, where RouteLink decides what the click does.
func RewriteArticleLinks(articleHTML string) string {
	return articleHrefAttr.ReplaceAllStringFunc(articleHTML, func(match string) string {
		m := articleHrefAttr.FindStringSubmatch(match)
		href := html.UnescapeString(m[2])
		if href == "" || strings.HasPrefix(href, "#") {
			return match
		}
		return m[1] + `href="` + LinkRoute + "?href=" + domain.EncodeURIComponent(href) + `"`
	})
}

// WrapArticle embeds article markup in a complete styled document. Script
// elements are removed and the document forbids scripts of its own.
func WrapArticle(body string) string {
	body = scriptElement.ReplaceAllString(body, "")
	return "<!DOCTYPE html>\n<html><head>" + articlePolicy + "<style>\n" + zimArticleStyle + "</style></head><body>" + body + "</body></html>"
}

func indexedTextHTML(content string) string {
	if content == "" {
		content = NoContent
	}
	return `<pre class="content-text">` + html.EscapeString(content) + `</pre>`
}

// RouteLink decides what a click on an article link does. Fragment links
// do nothing, web links open externally, and anything else searches the
// ZIM source for the linked article's name.
func (v *DocumentViewer) RouteLink(href string) domain.LinkAction {
	return RouteArticleLink(href)
}

// RouteArticleLink is RouteLink without a viewer.
func RouteArticleLink(href string) domain.LinkAction {
	if href == "" || strings.HasPrefix(href, "#") {
		return domain.LinkAction{Kind: domain.LinkIgnore}
	}
	if strings.HasPrefix(href, "http") {
		return domain.LinkAction{Kind: domain.LinkExternal, Target: href}
	}

	name := strings.SplitN(href, "#", 2)[0]
	name = strings.ReplaceAll(name, "_", " ")
	name = parentDirPrefix.ReplaceAllString(name, "")
	return domain.LinkAction{
		Kind:   domain.LinkSearch,
		Query:  name + "::zim",
		Target: "/?q=" + domain.EncodeURIComponent(name) + "::zim",
	}
}

// ViewerMachine tracks a paged viewer through idle, loading, rendered and
// error. Only one load runs at a time; loads are bounded by a timeout.
type ViewerMachine struct {
	timeout time.Duration

	mu    sync.Mutex
	state domain.ViewerState
}

// NewViewerMachine creates an idle viewer.
func NewViewerMachine(timeout time.Duration) *ViewerMachine {
	if timeout <= 0 {
		timeout = domain.ViewerLoadTimeout
	}
	return &ViewerMachine{
		timeout: timeout,
		state:   domain.ViewerState{Phase: domain.ViewerIdle, Zoom: domain.DefaultZoom},
	}
}

// State returns a snapshot of the viewer.
func (m *ViewerMachine) State() domain.ViewerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Load runs load under the viewer timeout. load reports the page count of
// the rendered document. A load already in progress makes Load return
// ErrBusy without calling load.
func (m *ViewerMachine) Load(ctx context.Context, kind domain.ViewerKind, load func(ctx context.Context) (int, error)) error {
	m.mu.Lock()
	if m.state.Phase == domain.ViewerLoading {
		m.mu.Unlock()
		return domain.ErrBusy
	}
	m.state = domain.ViewerState{Phase: domain.ViewerLoading, Kind: kind, Zoom: domain.DefaultZoom}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	type outcome struct {
		pages int
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		pages, err := load(ctx)
		done <- outcome{pages, err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			res.err = fmt.Errorf("%w after %s", domain.ErrViewerTimeout, m.timeout)
		}
		m.state.Phase = domain.ViewerError
		m.state.Error = res.err.Error()
		logger.Warn("viewer: %s load failed: %v", kind, res.err)
		return res.err
	}

	m.state.Phase = domain.ViewerRendered
	m.state.Pages = max(res.pages, 1)
	m.state.Page = 1
	return nil
}

// GoToPage moves to page n within the document.
func (m *ViewerMachine) GoToPage(n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != domain.ViewerRendered || n < 1 || n > m.state.Pages {
		return false
	}
	m.state.Page = n
	return true
}

// NextPage advances one page.
func (m *ViewerMachine) NextPage() bool {
	return m.GoToPage(m.State().Page + 1)
}

// PrevPage goes back one page.
func (m *ViewerMachine) PrevPage() bool {
	return m.GoToPage(m.State().Page - 1)
}

// SetZoom sets the zoom factor, clamped to the supported range.
func (m *ViewerMachine) SetZoom(z float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Zoom = min(max(z, domain.MinZoom), domain.MaxZoom)
	return m.state.Zoom
}

// Reset returns the viewer to idle.
func (m *ViewerMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = domain.ViewerState{Phase: domain.ViewerIdle, Zoom: domain.DefaultZoom}
}

var articleBlockEnd = strings.NewReplacer("</p>", "</p>\n", "<br>", "\n", "<br/>", "\n", "</h1>", "</h1>\n", "</h2>", "</h2>\n", "</h3>", "</h3>\n", "</li>", "</li>\n")

// ArticleText reduces article HTML to its non-empty text lines. Markup
// before <body> is dropped.
func ArticleText(doc string) string {
	if i := strings.Index(strings.ToLower(doc), "<body"); i >= 0 {
		doc = doc[i:]
	}
	text := html.UnescapeString(markupTag.ReplaceAllString(articleBlockEnd.Replace(doc), ""))
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
