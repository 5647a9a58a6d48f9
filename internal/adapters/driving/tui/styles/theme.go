// Package styles holds the colour palette and lipgloss styles shared by the
// TUI and the plain CLI output.
package styles

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

var (
	markTag = regexp.MustCompile(`(?i)<mark>(.*?)</mark>`)
	anyTag  = regexp.MustCompile(`<[^>]*>`)
)

// Theme is the colour palette. It follows the dark palette of the SearchBox
// web client so file type badges keep their colours in the terminal.
type Theme struct {
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#58a6ff"),
		Secondary:  lipgloss.Color("#2dd4bf"),
		Background: lipgloss.Color("#0d1117"),
		Surface:    lipgloss.Color("#161b22"),
		Foreground: lipgloss.Color("#c9d1d9"),
		Muted:      lipgloss.Color("#8b949e"),
		Success:    lipgloss.Color("#3fb950"),
		Warning:    lipgloss.Color("#d29922"),
		Error:      lipgloss.Color("#f85149"),
		Border:     lipgloss.Color("#30363d"),
	}
}

// Styles are the pre-built styles for a theme.
type Styles struct {
	theme *Theme

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Highlight lipgloss.Style

	// InputField frames the query box.
	InputField lipgloss.Style
	// Invalid frames the query box while the syntax check fails.
	Invalid   lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style
	Border    lipgloss.Style
	// Modal frames dialogs drawn over a view.
	Modal lipgloss.Style
	// Summary frames the AI summary pane.
	Summary lipgloss.Style
}

// NewStyles builds styles for theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title:     lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle:  lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:    lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:     lipgloss.NewStyle().Foreground(theme.Muted),
		Error:     lipgloss.NewStyle().Foreground(theme.Error),
		Success:   lipgloss.NewStyle().Foreground(theme.Success),
		Warning:   lipgloss.NewStyle().Foreground(theme.Warning),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(theme.Warning),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Surface),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Invalid: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Surface).
			Padding(0, 1),

		Help: lipgloss.NewStyle().Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Modal: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(theme.Accent).
			Padding(1, 2),

		Summary: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Secondary).
			PaddingLeft(1),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Badge renders label in bold with the given hex colour, as used for file
// type and source indicators.
func (s *Styles) Badge(label, color string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(label)
}

// Marked turns <mark> spans of a search snippet into highlighted text and
// drops every other tag.
func (s *Styles) Marked(text string) string {
	text = markTag.ReplaceAllStringFunc(text, func(m string) string {
		inner := markTag.FindStringSubmatch(m)[1]
		return s.Highlight.Render(html.UnescapeString(anyTag.ReplaceAllString(inner, "")))
	})
	return html.UnescapeString(anyTag.ReplaceAllString(text, ""))
}

// PageBar renders the pagination control on one line.
func (s *Styles) PageBar(bar *domain.PageBar) string {
	if bar == nil {
		return ""
	}
	var parts []string
	if !bar.PrevDisabled {
		parts = append(parts, "‹ prev")
	}
	if bar.ShowFirst {
		parts = append(parts, "1")
	}
	if bar.LeadingEllipsis {
		parts = append(parts, "…")
	}
	for _, p := range bar.Pages {
		if p.Active {
			parts = append(parts, s.Title.Render(fmt.Sprintf("[%d]", p.Page)))
			continue
		}
		parts = append(parts, fmt.Sprint(p.Page))
	}
	if bar.TrailingEllipsis {
		parts = append(parts, "…")
	}
	if bar.ShowLast {
		parts = append(parts, fmt.Sprint(bar.Total))
	}
	if !bar.NextDisabled {
		parts = append(parts, "next ›")
	}
	return strings.Join(parts, " ")
}
