package services

import (
	"context"
	"fmt"
	"html"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

var markupTag = regexp.MustCompile(`<[^>]*>`)

// ResultActionService provides actions on result cards.
// Application locations are opened against the local viewer server.
type ResultActionService struct {
	baseURL string
	open    func(url string) error
	copy    func(text string) error
}

// NewResultActionService creates an action service for the viewer at baseURL.
func NewResultActionService(baseURL string) *ResultActionService {
	return &ResultActionService{
		baseURL: strings.TrimRight(baseURL, "/"),
		open:    openURL,
		copy:    copyToClipboard,
	}
}

// CopyToClipboard copies the card's snippet, without highlight markup, to
// the system clipboard.
func (s *ResultActionService) CopyToClipboard(_ context.Context, card *domain.ResultCard) error {
	if card == nil {
		return fmt.Errorf("%w: card is nil", domain.ErrInvalidInput)
	}
	text := PlainText(card.Snippet)
	if text == "" {
		text = PlainText(card.Title)
	}
	return s.copy(text)
}

// OpenDocument opens the card's viewer in the default browser.
func (s *ResultActionService) OpenDocument(ctx context.Context, card *domain.ResultCard) error {
	if card == nil {
		return fmt.Errorf("%w: card is nil", domain.ErrInvalidInput)
	}
	return s.OpenURL(ctx, card.URL)
}

// OpenURL opens an application location, or an absolute URL as is.
func (s *ResultActionService) OpenURL(_ context.Context, location string) error {
	if location == "" {
		return fmt.Errorf("%w: empty location", domain.ErrInvalidInput)
	}
	target := location
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		target = s.baseURL + "/" + strings.TrimLeft(location, "/")
	}
	logger.Debug("actions: opening %s", target)
	return s.open(target)
}

// PlainText strips markup and entities from highlighted text.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(markupTag.ReplaceAllString(s, "")))
}

// openURL opens a URL in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", url)
	case osLinux:
		cmd = exec.Command("xdg-open", url)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// copyToClipboard copies text to the system clipboard using OS-specific commands.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("pbcopy")
	case osLinux:
		// Try xclip first, fall back to xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("no clipboard utility found (install xclip or xsel)")
		}
	case osWindows:
		cmd = exec.Command("cmd", "/c", "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
