// Package mcp provides an MCP (Model Context Protocol) server adapter for SearchBox.
// It lets AI assistants search the document index, read documents and
// request summaries from the backend's local LLM.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrSummaryUnavailable is returned by the summarize tool when no summary
// service is wired or the backend LLM is offline.
var ErrSummaryUnavailable = errors.New("mcp: summaries are unavailable")
