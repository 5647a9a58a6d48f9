package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
)

// Ensure TerminalPrompter implements the interface.
var _ driven.PINPrompter = (*TerminalPrompter)(nil)

// maxPINAttempts bounds re-prompting on malformed input.
const maxPINAttempts = 3

// TerminalPrompter reads the vault PIN from the terminal without echo.
// When stdin is not a terminal it reads a plain line instead.
// An empty answer cancels.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer

	isTerminal   func(fd int) bool
	readPassword func(fd int) ([]byte, error)
	lines        *bufio.Reader
}

// NewTerminalPrompter creates a prompter reading in and writing prompts to out.
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:           in,
		out:          out,
		isTerminal:   term.IsTerminal,
		readPassword: term.ReadPassword,
	}
}

// PromptPIN asks for a 4-digit PIN until a valid one is entered, the user
// submits an empty line, or the attempts run out.
func (p *TerminalPrompter) PromptPIN(ctx context.Context) (string, bool, error) {
	for attempt := 0; attempt < maxPINAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		fmt.Fprint(p.out, "Vault PIN (4 digits, empty to cancel): ")
		pin, err := p.readLine()
		fmt.Fprintln(p.out)
		if err != nil {
			if err == io.EOF {
				return "", false, nil
			}
			return "", false, fmt.Errorf("reading PIN: %w", err)
		}

		switch {
		case pin == "":
			return "", false, nil
		case domain.ValidPIN(pin):
			return pin, true, nil
		default:
			fmt.Fprintln(p.out, "PIN must be exactly 4 digits.")
		}
	}
	return "", false, nil
}

func (p *TerminalPrompter) readLine() (string, error) {
	fd := int(p.in.Fd())
	if p.isTerminal(fd) {
		raw, err := p.readPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	if p.lines == nil {
		p.lines = bufio.NewReader(p.in)
	}
	line, err := p.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
