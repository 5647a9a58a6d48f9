// Package input provides the query box of the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// Validator checks query syntax as the user types.
type Validator func(query string) domain.Validation

// SearchInput wraps a bubbles textinput and shows the live syntax verdict.
type SearchInput struct {
	textinput  textinput.Model
	styles     *styles.Styles
	validate   Validator
	validation domain.Validation
	width      int
}

// NewSearchInput creates the query box. validate may be nil.
func NewSearchInput(s *styles.Styles, validate Validator) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Search documents, e.g. kubernetes::pdf"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		validate:  validate,
		width:     50,
	}
}

// Init initialises the search input.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the text box and re-validates when the text changes.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	before := s.textinput.Value()
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	if s.textinput.Value() != before {
		s.revalidate()
	}
	return s, cmd
}

func (s *SearchInput) revalidate() {
	if s.validate == nil {
		return
	}
	s.validation = s.validate(s.textinput.Value())
}

// View renders the query box with the syntax verdict under it.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render("Search: ")
	frame := s.styles.InputField
	if s.validation.Status == domain.StatusInvalid {
		frame = s.styles.Invalid
	}
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	box := lipgloss.JoinHorizontal(lipgloss.Center, label, frame.Render(s.textinput.View()))

	switch s.validation.Status {
	case domain.StatusInvalid:
		return box + "\n" + s.styles.Error.Render("  ✗ "+s.validation.Message)
	case domain.StatusValid:
		return box + "\n" + s.styles.Success.Render("  ✓ "+s.validation.Message)
	default:
		return box
	}
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
	s.revalidate()
}

// Validation returns the verdict for the current text.
func (s *SearchInput) Validation() domain.Validation {
	return s.validation
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.textinput.Width = max(width-12, 20)
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
	s.validation = domain.Validation{}
}
