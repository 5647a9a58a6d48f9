package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// pinModal collects the vault PIN while a PromptPIN call waits on reply.
type pinModal struct {
	input textinput.Model
	reply chan<- string
	err   string
}

func newPINModal(reply chan<- string) *pinModal {
	ti := textinput.New()
	ti.Placeholder = "0000"
	ti.CharLimit = domain.PINLength
	ti.Width = domain.PINLength + 2
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Focus()

	return &pinModal{input: ti, reply: reply}
}

// update handles a key and reports whether the modal is finished.
func (m *pinModal) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	//nolint:exhaustive // only these keys close the modal
	switch msg.Type {
	case tea.KeyEsc:
		m.answer("")
		return true, nil

	case tea.KeyEnter:
		pin := m.input.Value()
		if !domain.ValidPIN(pin) {
			m.err = "PIN must be 4 digits"
			return false, nil
		}
		m.answer(pin)
		return true, nil

	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if !unicode.IsDigit(r) {
				return false, nil
			}
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return false, cmd
}

func (m *pinModal) answer(pin string) {
	select {
	case m.reply <- pin:
	default:
	}
}

func (m *pinModal) view(s *styles.Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Vault locked"))
	b.WriteString("\n\n")
	b.WriteString("Enter your 4-digit PIN to unlock vault documents.\n\n")
	b.WriteString(m.input.View())
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(m.err))
	}
	b.WriteString("\n\n")
	b.WriteString(s.Help.Render("[enter] unlock  [esc] cancel"))
	return s.Modal.Render(b.String())
}
