package driving

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// ResultActionService provides actions on search results for external actors.
// This is used by TUI, CLI, and MCP adapters.
type ResultActionService interface {
	// CopyToClipboard copies the card's snippet to the system clipboard.
	CopyToClipboard(ctx context.Context, card *domain.ResultCard) error

	// OpenDocument opens the card's viewer URL in the default browser.
	OpenDocument(ctx context.Context, card *domain.ResultCard) error

	// OpenURL opens an application location in the default browser.
	OpenURL(ctx context.Context, location string) error
}
