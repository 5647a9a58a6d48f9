package driving

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// ViewerService prepares documents for display.
type ViewerService interface {
	// Open fetches a document and routes it to its viewer.
	Open(ctx context.Context, id string) (*domain.Document, domain.ViewerKind, error)

	// ZimArticle prepares a ZIM article for a sandboxed frame.
	ZimArticle(ctx context.Context, doc *domain.Document) (*domain.ZimArticle, error)

	// RouteLink decides what a click on an article link does.
	RouteLink(href string) domain.LinkAction
}
