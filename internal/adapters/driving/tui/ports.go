// Package tui is the interactive terminal interface of searchbox: home,
// search with the summary pane, the document browser, the viewer and
// settings, switched by a single bubbletea model.
package tui

import (
	"errors"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
)

// Port validation errors.
var (
	ErrInvalidPorts         = errors.New("tui: invalid ports configuration")
	ErrMissingSearchService = errors.New("tui: search service is required")
)

// Ports are the services the views call. Only Search is required.
type Ports struct {
	// Search runs queries, pagination and the document browser.
	Search driving.SearchService

	// Summary generates AI summaries on demand.
	Summary driving.SummaryService

	// History loads recent searches for the home view.
	History driving.HistoryService

	// Recommendations provides suggested searches.
	Recommendations driving.RecommendationService

	// Viewer fetches documents and ZIM articles.
	Viewer driving.ViewerService

	// ResultAction provides actions on search results.
	ResultAction driving.ResultActionService

	// Settings manages application settings.
	Settings driving.SettingsService

	// Subscribe registers for core events and returns an unsubscribe func.
	Subscribe func(func(domain.Event)) func()
}

// NewPorts wires the services needed to search and act on results.
func NewPorts(
	search driving.SearchService,
	summary driving.SummaryService,
	resultAction driving.ResultActionService,
) *Ports {
	return &Ports{
		Search:       search,
		Summary:      summary,
		ResultAction: resultAction,
	}
}

// Validate reports nil ports or a missing search service. The other views
// degrade without their service.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
