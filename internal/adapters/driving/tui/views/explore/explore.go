// Package explore provides the document browser view for the TUI.
package explore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/components/list"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
)

// ErrNoSearchService indicates that no search service was provided.
var ErrNoSearchService = errors.New("search service is required")

// Filters are the type pills, in display order.
var Filters = []domain.ExploreFilter{domain.ExploreAll, "pdf", "docx", "txt", "md", "image", "zim", "zip"}

// Sorts are the sort orders cycled with the sort key.
var Sorts = []domain.SortOrder{domain.SortRecent, domain.SortName, domain.SortSize}

// View is the document browser.
type View struct {
	styles *styles.Styles
	search driving.SearchService
	ctx    context.Context
	list   *list.ResultList

	filter    int
	sort      int
	total     int
	allLoaded bool
	loading   bool
	err       error
	width     int
	height    int
	ready     bool
}

// NewView creates a new explore view.
func NewView(s *styles.Styles, search driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		search: search,
		ctx:    context.Background(),
		list:   list.NewResultList(s),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init reloads the first batch for the current pill and sort.
func (v *View) Init() tea.Cmd {
	return v.reload()
}

func (v *View) reload() tea.Cmd {
	v.list.SetCards(nil, 0)
	v.total = 0
	v.allLoaded = false
	return v.load(0, false)
}

func (v *View) load(offset int, appendBatch bool) tea.Cmd {
	v.loading = true
	v.err = nil
	svc, ctx := v.search, v.ctx
	filter, sort := v.Filter(), v.Sort()
	return func() tea.Msg {
		if svc == nil {
			return messages.ExploreLoaded{Err: ErrNoSearchService}
		}
		page, err := svc.Explore(ctx, filter, sort, offset)
		return messages.ExploreLoaded{Page: page, Append: appendBatch, Err: err}
	}
}

// Update handles messages for the explore view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ExploreLoaded:
		v.handleLoaded(msg)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleLoaded(msg messages.ExploreLoaded) {
	v.loading = false
	if msg.Err != nil {
		if !errors.Is(msg.Err, domain.ErrBusy) {
			v.err = msg.Err
		}
		return
	}
	if msg.Page == nil {
		return
	}
	// Drop batches for a pill or sort that is no longer selected.
	if msg.Page.Filter != v.Filter() || msg.Page.Sort != v.Sort() {
		return
	}
	if msg.Append {
		v.list.AppendCards(msg.Page.Cards)
	} else {
		v.list.SetCards(msg.Page.Cards, 0)
	}
	v.total = msg.Page.Total
	v.allLoaded = msg.Page.AllLoaded
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHome}
		}
	case "left", "h":
		v.filter = (v.filter + len(Filters) - 1) % len(Filters)
		return v, v.reload()
	case "right", "l", "tab":
		v.filter = (v.filter + 1) % len(Filters)
		return v, v.reload()
	case "s":
		v.sort = (v.sort + 1) % len(Sorts)
		return v, v.reload()
	case "m":
		return v, v.loadMore()
	case "down", "j":
		if v.list.AtEnd() {
			return v, v.loadMore()
		}
		v.list.MoveDown()
	case "up", "k":
		v.list.MoveUp()
	case "enter":
		if card := v.list.SelectedCard(); card != nil {
			id := card.ID
			return v, func() tea.Msg {
				return messages.DocumentRequested{ID: id}
			}
		}
	}
	return v, nil
}

func (v *View) loadMore() tea.Cmd {
	if v.loading || v.allLoaded {
		return nil
	}
	return v.load(v.list.Count(), true)
}

// View renders the explore view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Explore"))
	b.WriteString("\n\n")

	pills := make([]string, 0, len(Filters))
	for i, f := range Filters {
		label := strings.ToUpper(string(f))
		if i == v.filter {
			pills = append(pills, v.styles.Selected.Render("["+label+"]"))
		} else {
			pills = append(pills, v.styles.Muted.Render(" "+label+" "))
		}
	}
	b.WriteString(strings.Join(pills, " "))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Sort: %s", v.Sort())))
	if v.total > 0 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf(" · %s of %s documents",
			humanize.Comma(int64(v.list.Count())), humanize.Comma(int64(v.total)))))
	}
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.list.IsEmpty() && v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.list.IsEmpty():
		b.WriteString(v.styles.Muted.Render("No documents found"))
	default:
		b.WriteString(v.list.View())
		if v.loading {
			b.WriteString("\n" + v.styles.Muted.Render("Loading more..."))
		} else if !v.allLoaded {
			b.WriteString("\n" + v.styles.Muted.Render("[m] load more"))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[←/→] type  [s] sort  [j/k] navigate  [enter] view  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, max(height-9, 3))
}

// Filter returns the selected type pill.
func (v *View) Filter() domain.ExploreFilter {
	return Filters[v.filter]
}

// Sort returns the selected sort order.
func (v *View) Sort() domain.SortOrder {
	return Sorts[v.sort]
}

// Cards returns the loaded cards.
func (v *View) Cards() []domain.ResultCard {
	return v.list.Cards()
}

// Loading reports whether a batch is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
