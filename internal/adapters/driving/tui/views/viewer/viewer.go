// Package viewer provides the document viewer view for the TUI.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/core/services"
)

// ErrNoViewerService indicates that no viewer service was provided.
var ErrNoViewerService = errors.New("viewer service is required")

// View is the document viewer.
type View struct {
	styles  *styles.Styles
	viewer  driving.ViewerService
	actions driving.ResultActionService
	ctx     context.Context

	id       string
	query    string
	page     int
	back     messages.ViewType
	document *domain.Document
	kind     domain.ViewerKind
	content  string
	lines    []string
	notice   string

	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates a new viewer. actions may be nil.
func NewView(s *styles.Styles, viewer driving.ViewerService, actions driving.ResultActionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		viewer:  viewer,
		actions: actions,
		ctx:     context.Background(),
		back:    messages.ViewSearch,
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open starts loading document id. query and page describe the search the
// viewer returns to; back is the view esc goes to.
func (v *View) Open(id, query string, page int, back messages.ViewType) tea.Cmd {
	v.id = id
	v.query = query
	v.page = page
	v.back = back
	v.document = nil
	v.kind = ""
	v.content = ""
	v.lines = nil
	v.notice = ""
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	return v.loadContent()
}

func (v *View) loadContent() tea.Cmd {
	id, ctx, svc := v.id, v.ctx, v.viewer
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentLoaded{Err: ErrNoViewerService}
		}

		doc, kind, err := svc.Open(ctx, id)
		if err != nil {
			return messages.DocumentLoaded{Err: err}
		}

		body := doc.Content
		if kind == domain.ViewerZim {
			article, err := svc.ZimArticle(ctx, doc)
			if err != nil {
				return messages.DocumentLoaded{Document: doc, Kind: kind, Err: err}
			}
			body = services.ArticleText(article.HTML)
		}
		return messages.DocumentLoaded{Document: doc, Kind: kind, Body: body}
	}
}

// Update handles messages for the viewer.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentLoaded:
		v.loading = false
		v.document = msg.Document
		v.kind = msg.Kind
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.content = msg.Body
		v.wrapContent()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d", " ":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "o":
		v.openInBrowser()
	case "esc", "backspace":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}

	return v, nil
}

func (v *View) openInBrowser() {
	if v.actions == nil || v.id == "" {
		v.notice = "Open not available"
		return
	}
	location := domain.ViewURL(v.id, v.query, v.page)
	if err := v.actions.OpenURL(v.ctx, location); err != nil {
		v.notice = "Open: " + err.Error()
		return
	}
	v.notice = "Opened " + location
}

func (v *View) wrapContent() {
	if v.content == "" {
		v.lines = nil
		return
	}
	wrapped := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(v.content)
	v.lines = strings.Split(wrapped, "\n")
}

func (v *View) visibleLines() int {
	// Title, meta, separator, position and help.
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the viewer.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil && v.document.Filename != "" {
		title = v.document.Filename
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.document != nil {
		style := domain.StyleForExtension(v.document.Extension())
		meta := fmt.Sprintf(" %s • %s viewer", v.document.Source.Label(), v.kind)
		b.WriteString(v.styles.Badge(style.Label, style.Color) + v.styles.Muted.Render(meta))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading document..."))
		b.WriteString("\n\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(v.errorText()))
		b.WriteString("\n\n")
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
		b.WriteString("\n\n")
	default:
		v.writeContent(&b)
	}

	if v.notice != "" {
		b.WriteString(v.styles.Muted.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [o] open in browser  [esc] back"))
	return b.String()
}

func (v *View) writeContent(b *strings.Builder) {
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		percentage := 0
		if m := v.maxScrollOffset(); m > 0 {
			percentage = v.scrollOffset * 100 / m
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage, v.scrollOffset+1, end, len(v.lines))))
	}
	b.WriteString("\n\n")
}

func (v *View) errorText() string {
	switch {
	case errors.Is(v.err, domain.ErrAuthRequired):
		return "This document is in the vault. Unlock it with your PIN to view it."
	case errors.Is(v.err, domain.ErrNotFound):
		return "Document not found."
	case errors.Is(v.err, domain.ErrViewerTimeout):
		return "The document took too long to load."
	default:
		return "Error: " + v.err.Error()
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrapContent()
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Content returns the document text.
func (v *View) Content() string {
	return v.content
}

// Loading reports whether a document is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
