package search

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// Prompt is the invalid-syntax dialog shown before an invalid search runs.
type Prompt struct {
	query      string
	validation domain.Validation
	selected   int
}

var promptChoices = []struct {
	label  string
	choice domain.ValidationChoice
}{
	{"Search anyway", domain.ChoiceContinue},
	{"Fix query", domain.ChoiceFix},
	{"Close", domain.ChoiceClose},
}

func (v *View) openPrompt(query string, validation domain.Validation) {
	v.prompt = &Prompt{query: query, validation: validation}
	v.input.Blur()
}

func (v *View) handlePromptKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "up", "k", "shift+tab":
		if v.prompt.selected > 0 {
			v.prompt.selected--
		}
		return v, nil
	case "right", "l", "down", "j", "tab":
		if v.prompt.selected < len(promptChoices)-1 {
			v.prompt.selected++
		}
		return v, nil
	case "esc":
		return v, v.answer(domain.ChoiceClose)
	case "enter":
		return v, v.answer(promptChoices[v.prompt.selected].choice)
	}
	return v, nil
}

func (v *View) answer(choice domain.ValidationChoice) tea.Cmd {
	query := v.prompt.query
	return func() tea.Msg {
		return messages.ValidationAnswered{Query: query, Choice: choice}
	}
}

func (v *View) renderPrompt() string {
	var b strings.Builder
	b.WriteString(v.styles.Warning.Render("Query syntax issues"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.prompt.validation.Message))
	b.WriteString("\n")
	for _, d := range v.prompt.validation.Diagnostics {
		b.WriteString("\n• " + v.styles.Normal.Render(d.Message))
		if d.Suggestion != "" {
			b.WriteString("\n  " + v.styles.Muted.Render(d.Suggestion))
		}
	}
	b.WriteString("\n\n")

	buttons := make([]string, 0, len(promptChoices))
	for i, c := range promptChoices {
		if i == v.prompt.selected {
			buttons = append(buttons, v.styles.Selected.Render("[ "+c.label+" ]"))
		} else {
			buttons = append(buttons, v.styles.Normal.Render("  "+c.label+"  "))
		}
	}
	b.WriteString(strings.Join(buttons, " "))
	return v.styles.Modal.Render(b.String())
}

// Action is an entry of the result action menu.
type Action string

// Result actions.
const (
	ActionView    Action = "View document"
	ActionBrowser Action = "Open in browser"
	ActionCopy    Action = "Copy snippet"
	ActionCancel  Action = "Cancel"
)

// ActionMenu represents a simple action selection overlay.
type ActionMenu struct {
	actions  []Action
	selected int
	card     *domain.ResultCard
}

func newActionMenu(card *domain.ResultCard) *ActionMenu {
	return &ActionMenu{
		actions: []Action{ActionView, ActionBrowser, ActionCopy, ActionCancel},
		card:    card,
	}
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.actionMenu.selected > 0 {
			v.actionMenu.selected--
		}
	case "down", "j":
		if v.actionMenu.selected < len(v.actionMenu.actions)-1 {
			v.actionMenu.selected++
		}
	case "esc":
		v.actionMenu = nil
	case "enter":
		action := v.actionMenu.actions[v.actionMenu.selected]
		card := v.actionMenu.card
		v.actionMenu = nil
		return v, v.executeAction(action, card)
	}
	return v, nil
}

// executeAction performs the selected action on a result card.
func (v *View) executeAction(action Action, card *domain.ResultCard) tea.Cmd {
	switch action {
	case ActionView:
		id := card.ID
		return func() tea.Msg {
			return messages.DocumentRequested{ID: id}
		}
	case ActionBrowser:
		v.openSelected()
	case ActionCopy:
		v.copySelected()
	case ActionCancel:
		// Menu is already closed
	}
	return nil
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions))
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+string(action)))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+string(action)))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}
