// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/keymap"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady       State = "ready"
	StateSearching   State = "searching"
	StateSummarising State = "summarising"
	StateError       State = "error"
	StateHelp        State = "help"
	StateResults     State = "results"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     State
	message   string
	level     domain.ToastLevel
	totalHits int
	page      int
	pages     int
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	if s.message != "" && s.state != StateError {
		return s.toastStyle().Render(s.message)
	}

	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateSummarising:
		return s.styles.Muted.Render(s.resultsText() + " · Generating summary...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateReady, StateResults:
		if s.totalHits > 0 {
			return s.styles.Normal.Render(s.resultsText())
		}
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) resultsText() string {
	text := humanize.Comma(int64(s.totalHits)) + " results"
	if s.pages > 1 {
		text += fmt.Sprintf(" · page %d of %d", s.page, s.pages)
	}
	return text
}

func (s *Bar) toastStyle() lipgloss.Style {
	switch s.level {
	case domain.ToastError:
		return s.styles.Error
	case domain.ToastWarning:
		return s.styles.Warning
	case domain.ToastSuccess:
		return s.styles.Success
	default:
		return s.styles.Normal
	}
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateResults && s.totalHits > 0 {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message shown with info level.
func (s *Bar) SetMessage(message string) {
	s.message = message
	s.level = domain.ToastInfo
}

// SetToast shows a toast message in the colour of its level.
func (s *Bar) SetToast(level domain.ToastLevel, message string) {
	s.message = message
	s.level = level
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetPage records the hit count and pagination of the current search.
func (s *Bar) SetPage(state domain.PageState) {
	s.totalHits = state.TotalHits
	s.page = state.Page
	s.pages = state.TotalPages()
}

// TotalHits returns the hit count of the current search.
func (s *Bar) TotalHits() int {
	return s.totalHits
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.level = ""
	s.totalHits = 0
	s.page = 0
	s.pages = 0
}
