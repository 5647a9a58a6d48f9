package mcp

import (
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
)

// Ports are the services behind the MCP tools. Only Search is required;
// tools whose port is nil report that the feature is unavailable.
type Ports struct {
	Search          driving.SearchService
	Summary         driving.SummaryService
	History         driving.HistoryService
	Recommendations driving.RecommendationService
	Viewer          driving.ViewerService
}

// Validate reports a missing search service.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
