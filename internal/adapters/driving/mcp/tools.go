package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/services"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query, e.g. kubernetes::pdf or cats::image"`
	Page  int    `json:"page,omitempty" jsonschema:"result page, starting at 1 (default 1)"`
	Force bool   `json:"force,omitempty" jsonschema:"search even when the query has syntax problems"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Query      string               `json:"query"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	TotalHits  int                  `json:"total_hits"`
	Results    []SearchResultOutput `json:"results"`
	Images     []ImageOutput        `json:"images,omitempty"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Source     string `json:"source"`
	Size       string `json:"size"`
	Snippet    string `json:"snippet,omitempty"`
	Locked     bool   `json:"locked,omitempty"`
	ViewURL    string `json:"view_url"`
}

// ImageOutput is one gallery image.
type ImageOutput struct {
	DocumentID string `json:"document_id"`
	Document   string `json:"document"`
	Label      string `json:"label"`
	URL        string `json:"url"`
}

// ValidateInput is the input schema for the validate_query tool.
type ValidateInput struct {
	Query string `json:"query" jsonschema:"the query to check"`
}

// ValidateOutput reports query syntax problems.
type ValidateOutput struct {
	Valid       bool               `json:"valid"`
	Message     string             `json:"message,omitempty"`
	Diagnostics []DiagnosticOutput `json:"diagnostics,omitempty"`
	Allowed     []string           `json:"allowed_types"`
}

// DiagnosticOutput is one syntax problem.
type DiagnosticOutput struct {
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// SummarizeInput is the input schema for the summarize tool.
type SummarizeInput struct {
	Query   string `json:"query" jsonschema:"the search whose first page is summarised"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"ignore the cached summary"`
}

// SummarizeOutput is the generated summary.
type SummarizeOutput struct {
	Query      string            `json:"query"`
	Summary    string            `json:"summary"`
	Model      string            `json:"model,omitempty"`
	Confidence string            `json:"confidence,omitempty"`
	FromCache  bool              `json:"from_cache"`
	Sources    []domain.Citation `json:"sources,omitempty"`
}

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// HistoryOutput lists recent searches.
type HistoryOutput struct {
	History []string `json:"history"`
}

// RecommendationsOutput lists suggested searches.
type RecommendationsOutput struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed documents. Supports type operators such as term::pdf, term::!zip and a::pdf && b::docx",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_query",
		Description: "Check search query syntax and suggest fixes",
	}, s.handleValidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize",
		Description: "Summarise the first page of results for a query with the local LLM",
	}, s.handleSummarize)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_history",
		Description: "List recent searches, most recent first",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommendations",
		Description: "Suggested searches based on the index and recent activity",
	}, s.handleRecommendations)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}

	result, err := s.ports.Search.Search(ctx, input.Query, page, input.Force)
	if err != nil {
		var redirect *domain.RedirectError
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &redirect):
			return s.searchImages(ctx, input.Query, page)
		case errors.As(err, &verr):
			return nil, SearchOutput{}, fmt.Errorf("%w; call validate_query for suggestions or pass force", err)
		default:
			return nil, SearchOutput{}, err
		}
	}

	return nil, searchOutput(result), nil
}

func searchOutput(page *domain.ResultPage) SearchOutput {
	out := SearchOutput{
		Query:      page.Query,
		Page:       page.State.Page,
		TotalPages: page.State.TotalPages(),
		TotalHits:  page.State.TotalHits,
		Results:    make([]SearchResultOutput, len(page.Cards)),
	}
	for i, card := range page.Cards {
		out.Results[i] = SearchResultOutput{
			DocumentID: card.ID,
			Title:      services.PlainText(card.Title),
			Type:       card.TypeLabel,
			Source:     card.SourceLabel,
			Size:       card.SizeLabel,
			Snippet:    services.PlainText(card.Snippet),
			Locked:     card.Locked,
			ViewURL:    card.URL,
		}
	}
	return out
}

func (s *Server) searchImages(ctx context.Context, query string, page int) (*mcp.CallToolResult, SearchOutput, error) {
	images, err := s.ports.Search.SearchImages(ctx, query, page)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	out := SearchOutput{
		Query:      images.Query,
		Page:       images.State.Page,
		TotalPages: images.State.TotalPages(),
		TotalHits:  images.State.TotalHits,
		Results:    []SearchResultOutput{},
		Images:     make([]ImageOutput, len(images.Images)),
	}
	for i, img := range images.Images {
		out.Images[i] = ImageOutput{
			DocumentID: img.DocID,
			Document:   img.DocName,
			Label:      img.Label(),
			URL:        img.ModalSrc,
		}
	}
	return nil, out, nil
}

// handleValidate handles the validate_query tool invocation.
func (s *Server) handleValidate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	v := s.ports.Search.Validate(input.Query)

	out := ValidateOutput{
		Valid:   v.Status != domain.StatusInvalid,
		Message: v.Message,
		Allowed: domain.AllowedTypeTokens(),
	}
	for _, d := range v.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, DiagnosticOutput{
			Message:    d.Message,
			Suggestion: d.Suggestion,
		})
	}
	return nil, out, nil
}

// handleSummarize handles the summarize tool invocation.
func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, SummarizeOutput, error) {
	if s.ports.Summary == nil {
		return nil, SummarizeOutput{}, ErrSummaryUnavailable
	}

	page, err := s.ports.Search.Search(ctx, input.Query, 1, true)
	if err != nil {
		return nil, SummarizeOutput{}, fmt.Errorf("searching: %w", err)
	}
	if page.IsEmpty() {
		return nil, SummarizeOutput{Query: page.Query}, nil
	}
	if !s.ports.Summary.Available(ctx) {
		return nil, SummarizeOutput{}, fmt.Errorf("%w: %w", ErrSummaryUnavailable, domain.ErrLLMUnavailable)
	}

	view, err := s.ports.Summary.Generate(ctx, page.Query, page.Records, input.Refresh, nil)
	if err != nil {
		return nil, SummarizeOutput{}, err
	}
	if view.Phase == domain.SummaryFailed {
		return nil, SummarizeOutput{}, fmt.Errorf("%w: %s", domain.ErrSummaryFailed, view.Error)
	}

	out := SummarizeOutput{
		Query:     page.Query,
		Summary:   view.Markdown,
		FromCache: view.FromCache,
		Sources:   view.Citations,
	}
	if view.Summary != nil {
		out.Model = view.Summary.ModelUsed
		out.Confidence = string(view.Summary.Confidence)
	}
	return nil, out, nil
}

// handleHistory handles the search_history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.History == nil {
		return nil, HistoryOutput{History: []string{}}, nil
	}
	s.ports.History.Load(ctx)
	history := s.ports.History.List()
	if history == nil {
		history = []string{}
	}
	return nil, HistoryOutput{History: history}, nil
}

// handleRecommendations handles the recommendations tool invocation.
func (s *Server) handleRecommendations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, RecommendationsOutput, error) {
	if s.ports.Recommendations == nil {
		return nil, RecommendationsOutput{Recommendations: []domain.Recommendation{}}, nil
	}
	recs, err := s.ports.Recommendations.Recommendations(ctx)
	if err != nil {
		return nil, RecommendationsOutput{}, fmt.Errorf("fetching recommendations: %w", err)
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	return nil, RecommendationsOutput{Recommendations: recs}, nil
}
