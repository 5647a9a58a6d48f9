package domain

import (
	"strings"
	"time"
)

// ViewerLoadTimeout bounds PDF and DOCX loading.
const ViewerLoadTimeout = 30 * time.Second

// ViewerKind selects which viewer renders a document.
type ViewerKind string

// Viewer kinds.
const (
	ViewerPDF      ViewerKind = "pdf"
	ViewerDocx     ViewerKind = "docx"
	ViewerMarkdown ViewerKind = "markdown"
	ViewerImage    ViewerKind = "image"
	ViewerZim      ViewerKind = "zim"
	ViewerText     ViewerKind = "text"
)

// ViewerFor routes a record to its viewer by file type.
func ViewerFor(rec Record) ViewerKind {
	switch ext := rec.Extension(); {
	case ext == "pdf":
		return ViewerPDF
	case ext == "docx" || ext == "doc":
		return ViewerDocx
	case ext == "md":
		return ViewerMarkdown
	case ext == "zim" || strings.HasPrefix(rec.FilePath, ZimScheme):
		return ViewerZim
	case IsImageType(ext):
		return ViewerImage
	default:
		return ViewerText
	}
}

// FileTypeStyle is the badge shown for a file type.
type FileTypeStyle struct {
	Label string
	Color string
}

var fileTypeStyles = map[string]FileTypeStyle{
	"pdf":  {Label: "PDF", Color: "#f85149"},
	"docx": {Label: "DOCX", Color: "#58a6ff"},
	"doc":  {Label: "DOC", Color: "#58a6ff"},
	"txt":  {Label: "TXT", Color: "#d29922"},
	"md":   {Label: "MD", Color: "#3fb950"},
	"jpg":  {Label: "IMG", Color: "#3fb950"},
	"jpeg": {Label: "IMG", Color: "#3fb950"},
	"png":  {Label: "IMG", Color: "#3fb950"},
	"gif":  {Label: "IMG", Color: "#3fb950"},
	"webp": {Label: "IMG", Color: "#3fb950"},
	"svg":  {Label: "IMG", Color: "#3fb950"},
	"bmp":  {Label: "IMG", Color: "#3fb950"},
	"zim":  {Label: "ZIM", Color: "#2dd4bf"},
	"zip":  {Label: "ZIP", Color: "#3fb950"},
}

// StyleForExtension returns the badge for ext, defaulting to the
// uppercased extension in grey.
func StyleForExtension(ext string) FileTypeStyle {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if style, ok := fileTypeStyles[ext]; ok {
		return style
	}
	return FileTypeStyle{Label: strings.ToUpper(ext), Color: "#8b949e"}
}

// ZimScheme prefixes the stored path of ZIM articles.
const ZimScheme = "zim://"

// ZimLocation addresses one article inside a ZIM archive.
type ZimLocation struct {
	Archive    string `json:"archive"`
	ArticleURL string `json:"article_url"`
}

// IsZero reports whether either half of the location is missing.
func (l ZimLocation) IsZero() bool {
	return l.Archive == "" || l.ArticleURL == ""
}

// LinkActionKind says what a click on an article link does.
type LinkActionKind string

// Link actions.
const (
	LinkIgnore   LinkActionKind = "ignore"
	LinkExternal LinkActionKind = "external"
	LinkSearch   LinkActionKind = "search"
)

// LinkAction is the routed outcome of an article link.
type LinkAction struct {
	Kind LinkActionKind `json:"kind"`

	// Target is the URL to open for external links or the search location.
	Target string `json:"target,omitempty"`

	// Query is the search to run for internal links.
	Query string `json:"query,omitempty"`
}

// ViewerPhase is a state of the document viewer machine.
type ViewerPhase string

// Viewer phases.
const (
	ViewerIdle     ViewerPhase = "idle"
	ViewerLoading  ViewerPhase = "loading"
	ViewerRendered ViewerPhase = "rendered"
	ViewerError    ViewerPhase = "error"
)

// Zoom bounds for the paged viewers.
const (
	MinZoom     = 0.25
	MaxZoom     = 5.0
	DefaultZoom = 1.0
)

// ViewerState is a snapshot of the viewer machine.
type ViewerState struct {
	Phase ViewerPhase `json:"phase"`
	Kind  ViewerKind  `json:"kind"`
	Page  int         `json:"page"`
	Pages int         `json:"pages"`
	Zoom  float64     `json:"zoom"`
	Error string      `json:"error,omitempty"`
}

// Document is the backend's view of a single record.
type Document struct {
	Record
	ZimArticleURL string `json:"zim_article_url,omitempty"`
}

// ZimArticle is an article prepared for a sandboxed frame.
type ZimArticle struct {
	Location ZimLocation `json:"location"`
	Title    string      `json:"title"`

	// HTML is the complete wrapped document.
	HTML string `json:"html"`

	// Fallback is true when the indexed text is shown instead of the article.
	Fallback bool `json:"fallback"`
}
