package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/services"
)

const (
	// uriScheme is the custom URI scheme for SearchBox resources.
	uriScheme = "searchbox://"

	documentsPrefix = uriScheme + "documents/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recent searches, most recent first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsPrefix + "{documentId}",
		Name:        "document-content",
		Description: "Text of an indexed document; ZIM articles are converted to plain text",
		MIMEType:    "text/plain",
	}, s.handleDocumentResource)
}

// handleHistoryResource returns the recent search list.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	history := []string{}
	if s.ports.History != nil {
		s.ports.History.Load(ctx)
		if list := s.ports.History.List(); list != nil {
			history = list
		}
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentResource returns the text of a document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Viewer == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractDocumentID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, kind, err := s.ports.Viewer.Open(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if errors.Is(err, domain.ErrAuthRequired) {
			return nil, fmt.Errorf("document %s is in the locked vault: %w", id, err)
		}
		return nil, fmt.Errorf("opening document: %w", err)
	}

	text := doc.Content
	if kind == domain.ViewerZim {
		article, err := s.ports.Viewer.ZimArticle(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("loading article: %w", err)
		}
		text = services.ArticleText(article.HTML)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// searchbox://documents/{documentId}.
func extractDocumentID(uri string) string {
	if !strings.HasPrefix(uri, documentsPrefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, documentsPrefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
