package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
)

// sender is the part of *tea.Program the prompter needs.
type sender interface {
	Send(msg tea.Msg)
}

// ErrNotAttached is returned by PromptPIN before a program is running.
var ErrNotAttached = errors.New("tui: pin prompter is not attached to a program")

// PINPrompter asks for the vault PIN through the running TUI.
// It is safe to call from service goroutines while the program runs.
type PINPrompter struct {
	mu      sync.Mutex
	program sender
}

var _ driven.PINPrompter = (*PINPrompter)(nil)

// NewPINPrompter creates a prompter with no program attached.
func NewPINPrompter() *PINPrompter {
	return &PINPrompter{}
}

// Attach connects the prompter to a running program. Passing nil detaches it.
func (p *PINPrompter) Attach(program sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

// PromptPIN opens the PIN modal and blocks until it is answered.
func (p *PINPrompter) PromptPIN(ctx context.Context) (string, bool, error) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program == nil {
		return "", false, ErrNotAttached
	}

	reply := make(chan string, 1)
	program.Send(messages.PINRequested{Reply: reply})

	select {
	case pin := <-reply:
		if pin == "" {
			return "", false, nil
		}
		return pin, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}
