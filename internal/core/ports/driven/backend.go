package driven

import (
	"context"
	"io"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// SummaryAPI generates AI summaries through the backend's Ollama proxy.
type SummaryAPI interface {
	// StreamSummary posts the request to the streaming endpoint and returns
	// the NDJSON body. A non-2xx answer is returned as *domain.HTTPError.
	StreamSummary(ctx context.Context, req domain.SummaryRequest) (io.ReadCloser, error)

	// Summary posts the request to the one-shot endpoint.
	Summary(ctx context.Context, req domain.SummaryRequest) (*domain.Summary, error)
}

// StatusAPI checks backend subsystems.
type StatusAPI interface {
	// LLMStatus reports whether Ollama is enabled and reachable.
	LLMStatus(ctx context.Context) (domain.LLMStatus, error)

	// MeilisearchStatus reports the index engine state.
	MeilisearchStatus(ctx context.Context) (domain.MeilisearchStatus, error)

	// VaultStatus reports whether the vault is configured and unlocked.
	VaultStatus(ctx context.Context) (domain.VaultStatus, error)
}

// RecommendationsAPI fetches suggested searches.
type RecommendationsAPI interface {
	// Recommendations returns suggestions, optionally informed by history.
	// A nil history omits the history parameter.
	Recommendations(ctx context.Context, history []string) (*domain.Recommendations, error)
}

// HistoryAPI persists search history and the history enhancement preference.
type HistoryAPI interface {
	// GetHistory returns the stored history, most recent first.
	GetHistory(ctx context.Context) ([]string, error)

	// AddHistory records a query and returns the resulting history.
	AddHistory(ctx context.Context, query string) ([]string, error)

	// ClearHistory removes every stored query.
	ClearHistory(ctx context.Context) error

	// GetEnhancement returns the AI history enhancement preference.
	GetEnhancement(ctx context.Context) (bool, error)

	// SetEnhancement stores the AI history enhancement preference.
	SetEnhancement(ctx context.Context, enabled bool) error
}

// DocumentAPI reads documents and ZIM article content.
type DocumentAPI interface {
	// Document fetches one record. Vault records require the PIN.
	Document(ctx context.Context, id string) (*domain.Document, error)

	// ZimArticle fetches the raw article HTML.
	ZimArticle(ctx context.Context, loc domain.ZimLocation) (string, error)

	// ZimImage fetches an article image.
	ZimImage(ctx context.Context, archive, img string) (io.ReadCloser, string, error)
}

// Backend is the full SearchBox backend surface.
type Backend interface {
	SummaryAPI
	StatusAPI
	RecommendationsAPI
	HistoryAPI
	DocumentAPI
}
