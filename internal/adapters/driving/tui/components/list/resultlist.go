// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// linesPerCard is the height of one rendered card: title, meta and snippet.
const linesPerCard = 3

// ResultList displays result cards in a navigable list.
type ResultList struct {
	cards    []domain.ResultCard
	Offset   int
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			r.selected = max(len(r.cards)-1, 0)
		}
	}
	return r, nil
}

// View renders the visible window of cards around the selection.
func (r *ResultList) View() string {
	if len(r.cards) == 0 {
		return r.styles.Muted.Render("No results")
	}

	visible := max((r.height-1)/linesPerCard, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.cards))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderCard(i, &r.cards[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) renderCard(index int, card *domain.ResultCard) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := truncate(r.styles.Marked(card.Title), max(r.width-16, 10))
	if title == "" {
		title = "(Untitled)"
	}
	number := fmt.Sprintf("%d.", r.Offset+index+1)
	badge := r.styles.Badge(card.TypeLabel, card.TypeColor)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator+number+" ") + badge + " " + r.styles.Selected.Render(title)
	} else {
		titleLine = r.styles.Normal.Render(indicator+number+" ") + badge + " " + r.styles.Normal.Render(title)
	}
	if card.Locked {
		titleLine += " " + r.styles.Warning.Render("locked")
	}

	meta := []string{card.SourceLabel, card.SizeLabel}
	if card.ImageCount > 0 {
		meta = append(meta, fmt.Sprintf("%d images", card.ImageCount))
	}
	metaLine := r.styles.Muted.Render("    " + strings.Join(meta, " • "))

	snippet := truncate(r.styles.Marked(card.Snippet), max(r.width-6, 20))
	return titleLine + "\n" + metaLine + "\n    " + snippet
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// SetCards replaces the list. offset is the rank of the first card.
func (r *ResultList) SetCards(cards []domain.ResultCard, offset int) {
	r.cards = cards
	r.Offset = offset
	r.selected = 0
}

// AppendCards adds cards to the end, keeping the selection.
func (r *ResultList) AppendCards(cards []domain.ResultCard) {
	r.cards = append(r.cards, cards...)
}

// Cards returns the current cards.
func (r *ResultList) Cards() []domain.ResultCard {
	return r.cards
}

// Selected returns the index of the selected card.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.cards) {
		r.selected = index
	}
}

// SelectedCard returns the currently selected card, or nil if none.
func (r *ResultList) SelectedCard() *domain.ResultCard {
	if r.selected < 0 || r.selected >= len(r.cards) {
		return nil
	}
	return &r.cards[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.cards)-1 {
		r.selected++
	}
}

// AtEnd reports whether the last card is selected.
func (r *ResultList) AtEnd() bool {
	return len(r.cards) > 0 && r.selected == len(r.cards)-1
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of cards.
func (r *ResultList) Count() int {
	return len(r.cards)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.cards) == 0
}
