package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Page sizes used by the three search surfaces.
const (
	DefaultPageSize      = 10
	ImagePageSize        = 50
	ExplorePageSize      = 40
	MaxVisiblePages      = 10
	HighlightPreTag      = "<em>"
	HighlightPostTag     = "</em>"
	HasImagesFilter      = "has_images = true"
	DefaultIndexName     = "documents"
	DefaultSnippetLength = 300
)

// HighlightAttributes are the fields Meilisearch highlights.
var HighlightAttributes = []string{"filename", "content"}

// SortOrder selects the ordering of results.
type SortOrder string

// Available sort orders.
const (
	SortRecent SortOrder = "recent"
	SortName   SortOrder = "name"
	SortSize   SortOrder = "size"
)

// Rule returns the Meilisearch sort rule for the order.
// Unknown orders fall back to most recent first.
func (s SortOrder) Rule() string {
	switch s {
	case SortName:
		return "filename:asc"
	case SortSize:
		return "file_size:desc"
	default:
		return "uploaded_at:desc"
	}
}

// IsValid returns true if the sort order is recognised.
func (s SortOrder) IsValid() bool {
	switch s {
	case SortRecent, SortName, SortSize:
		return true
	default:
		return false
	}
}

// SearchRequest is the body sent to Meilisearch's search endpoint.
type SearchRequest struct {
	Query                 string   `json:"q"`
	Filter                string   `json:"filter,omitempty"`
	Sort                  []string `json:"sort,omitempty"`
	Limit                 int      `json:"limit"`
	Offset                int      `json:"offset"`
	AttributesToHighlight []string `json:"attributesToHighlight,omitempty"`
	HighlightPreTag       string   `json:"highlightPreTag,omitempty"`
	HighlightPostTag      string   `json:"highlightPostTag,omitempty"`
}

// SearchResponse is the subset of a Meilisearch reply the client reads.
type SearchResponse struct {
	Hits               []Record `json:"hits"`
	EstimatedTotalHits int      `json:"estimatedTotalHits"`
	ProcessingTimeMs   int      `json:"processingTimeMs"`
	Query              string   `json:"query"`
}

// PageState is the pagination position of the current search.
type PageState struct {
	Query     string `json:"query"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	TotalHits int    `json:"total_hits"`
}

// Offset returns the number of hits skipped for the page.
func (p PageState) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns ceil(TotalHits / PageSize).
func (p PageState) TotalPages() int {
	if p.PageSize <= 0 || p.TotalHits <= 0 {
		return 0
	}
	return (p.TotalHits + p.PageSize - 1) / p.PageSize
}

// EncodeURIComponent escapes s the way browsers escape a URI component:
// spaces become %20 and the marks !'()* are left alone.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	r := strings.NewReplacer("%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")
	return r.Replace(escaped)
}

// SearchURL returns the main search location for a query and page.
func SearchURL(query string, page int) string {
	return "/?q=" + EncodeURIComponent(query) + "&page=" + strconv.Itoa(page)
}

// ImageSearchURL returns the image gallery location for a query.
func ImageSearchURL(query, origin string) string {
	return "/images?q=" + EncodeURIComponent(query) + "&source=" + origin
}

// ViewURL returns the viewer location for a document.
// A page of zero omits the page parameter.
func ViewURL(docID, query string, page int) string {
	u := "/view/" + docID + "?q=" + EncodeURIComponent(query)
	if page > 0 {
		u += "&page=" + strconv.Itoa(page)
	}
	return u
}

// ParseSearchURL extracts query and page from a main search location.
// A missing or invalid page yields page 1.
func ParseSearchURL(raw string) (string, int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, err
	}
	values := u.Query()
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return values.Get("q"), page, nil
}
