// Package home provides the landing view: navigation, suggested searches
// and recent searches.
package home

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// Item represents a single menu option.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool // If true, selecting this item quits the app
}

// entry is one selectable line: a menu item or a query to run.
type entry struct {
	item  *Item
	query string
}

// View represents the home view.
type View struct {
	styles          *styles.Styles
	items           []Item
	recommendations []domain.Recommendation
	history         []string
	selected        int
	width           int
	height          int
	ready           bool
}

// NewView creates a new home view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Search", View: messages.ViewSearch},
			{Label: "Explore", View: messages.ViewExplore},
			{Label: "Settings", View: messages.ViewSettings},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the home view.
func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) entries() []entry {
	out := make([]entry, 0, len(v.items)+len(v.recommendations)+len(v.history))
	for i := range v.items {
		out = append(out, entry{item: &v.items[i]})
	}
	for _, r := range v.recommendations {
		out = append(out, entry{query: r.Query})
	}
	for _, q := range v.history {
		out = append(out, entry{query: q})
	}
	return out
}

// Update handles messages for the home view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.RecommendationsLoaded:
		if msg.Err == nil {
			v.SetRecommendations(msg.Recommendations)
		}
		return v, nil

	case messages.HistoryLoaded:
		v.SetHistory(msg.History)
		return v, nil

	case tea.KeyMsg:
		entries := v.entries()
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(entries)-1 {
				v.selected++
			}
			return v, nil

		case "/", "n":
			return v, changeView(messages.ViewSearch)

		case "enter":
			e := entries[v.selected]
			if e.item == nil {
				query := e.query
				return v, func() tea.Msg {
					return messages.SearchRequested{Query: query, Page: 1}
				}
			}
			if e.item.Quit {
				return v, tea.Quit
			}
			return v, changeView(e.item.View)

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

// View renders the home view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("SearchBox"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Search your documents, archives and vault"))
	b.WriteString("\n\n")

	index := 0
	for _, item := range v.items {
		b.WriteString(v.line(index, item.Label))
		index++
	}

	if len(v.recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Suggested searches"))
		b.WriteString("\n")
		for _, r := range v.recommendations {
			label := r.Query
			if r.Reason != "" {
				label += v.styles.Muted.Render("  " + r.Reason)
			}
			b.WriteString(v.line(index, label))
			index++
		}
	}

	if len(v.history) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Recent searches"))
		b.WriteString("\n")
		for _, q := range v.history {
			b.WriteString(v.line(index, q))
			index++
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [/] Search  [q] Quit"))
	return b.String()
}

func (v *View) line(index int, label string) string {
	if index == v.selected {
		return "> " + v.styles.Selected.Render(label) + "\n"
	}
	return "  " + v.styles.Normal.Render(label) + "\n"
}

// SetRecommendations replaces the suggested searches.
func (v *View) SetRecommendations(recs []domain.Recommendation) {
	v.recommendations = recs
	v.clampSelection()
}

// SetHistory replaces the recent searches.
func (v *View) SetHistory(history []string) {
	v.history = history
	v.clampSelection()
}

func (v *View) clampSelection() {
	if n := len(v.entries()); v.selected >= n {
		v.selected = n - 1
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
