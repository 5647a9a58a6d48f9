package domain

import (
	"path"
	"strconv"
	"strings"
)

// Source is the provenance of an indexed document.
type Source string

// Known sources. An empty source is treated as vault.
const (
	SourceVault       Source = "vault"
	SourceFolder      Source = "folder"
	SourceQBittorrent Source = "qbittorrent"
	SourceZim         Source = "zim"
	SourceZip         Source = "zip"
	SourceUnset       Source = ""
)

// Label returns the display label of the source.
func (s Source) Label() string {
	switch s {
	case SourceVault:
		return "Vault"
	case SourceQBittorrent:
		return "qBittorrent"
	case SourceZim:
		return "ZIM Archive"
	case SourceZip:
		return "ZIP Archive"
	default:
		return "Folder"
	}
}

// Color returns the tint used for the source indicator.
func (s Source) Color() string {
	switch s {
	case SourceVault:
		return "#58a6ff"
	case SourceQBittorrent:
		return "#f0883e"
	case SourceZim:
		return "#2dd4bf"
	case SourceZip:
		return "#3fb950"
	default:
		return "#8b949e"
	}
}

// FormattedFields holds highlighted variants returned under _formatted.
type FormattedFields struct {
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Record is a document hit as stored in the index.
// It is duck-typed at the edge and narrowed into a Result before display.
type Record struct {
	ID         string           `json:"id"`
	Filename   string           `json:"filename"`
	Content    string           `json:"content"`
	FileType   string           `json:"file_type"`
	FileSize   *int64           `json:"file_size,omitempty"`
	FilePath   string           `json:"file_path,omitempty"`
	UploadedAt any              `json:"uploaded_at,omitempty"`
	Source     Source           `json:"source,omitempty"`
	HasImages  bool             `json:"has_images,omitempty"`
	ImageCount int              `json:"image_count,omitempty"`
	FirstImage string           `json:"first_image,omitempty"`
	AllImages  []string         `json:"all_images,omitempty"`
	Formatted  *FormattedFields `json:"_formatted,omitempty"`
}

// Extension returns the lowercased extension of the record without a dot,
// preferring file_type over the filename suffix.
func (r Record) Extension() string {
	if r.FileType != "" {
		return strings.TrimPrefix(strings.ToLower(r.FileType), ".")
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(r.Filename)), ".")
}

// IsImage reports whether the record is itself an image file.
func (r Record) IsImage() bool {
	return IsImageType(r.Extension())
}

// ResultKind names the card template chosen for a result.
type ResultKind string

// Card templates.
const (
	ResultKindImage              ResultKind = "image"
	ResultKindDocumentWithImages ResultKind = "document_with_images"
	ResultKindDocument           ResultKind = "document"
)

// Result is the typed sum a Record is narrowed into before rendering.
// Implementations are ImageResult, DocumentResult and VaultResult.
type Result interface {
	// Kind returns the card template of the result.
	Kind() ResultKind

	// Record returns the underlying index record.
	Record() Record

	// Locked reports whether viewing requires the vault PIN.
	Locked() bool
}

// ImageResult is a hit whose file is an image.
type ImageResult struct {
	Rec Record
}

// Kind implements Result.
func (r ImageResult) Kind() ResultKind { return ResultKindImage }

// Record implements Result.
func (r ImageResult) Record() Record { return r.Rec }

// Locked implements Result.
func (r ImageResult) Locked() bool { return false }

// DocumentResult is a non-image hit, optionally carrying embedded images.
type DocumentResult struct {
	Rec        Record
	Thumbnail  string
	ImageCount int
}

// Kind implements Result.
func (r DocumentResult) Kind() ResultKind {
	if r.Thumbnail != "" {
		return ResultKindDocumentWithImages
	}
	return ResultKindDocument
}

// Record implements Result.
func (r DocumentResult) Record() Record { return r.Rec }

// Locked implements Result.
func (r DocumentResult) Locked() bool { return false }

// VaultResult wraps another variant stored in the PIN-protected vault.
type VaultResult struct {
	Inner Result
}

// Kind implements Result.
func (r VaultResult) Kind() ResultKind { return r.Inner.Kind() }

// Record implements Result.
func (r VaultResult) Record() Record { return r.Inner.Record() }

// Locked implements Result.
func (r VaultResult) Locked() bool { return true }

// Narrow converts a record into its typed Result variant.
func Narrow(rec Record) Result {
	var inner Result
	if rec.IsImage() {
		inner = ImageResult{Rec: rec}
	} else {
		doc := DocumentResult{Rec: rec}
		if rec.HasImages {
			doc.ImageCount = rec.ImageCount
			doc.Thumbnail = rec.FirstImage
		}
		inner = doc
	}
	if rec.Source == SourceVault {
		return VaultResult{Inner: inner}
	}
	return inner
}

// ResultCard is the display model of one search hit.
type ResultCard struct {
	ID          string     `json:"id"`
	Kind        ResultKind `json:"kind"`
	Locked      bool       `json:"locked"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet,omitempty"`
	TypeLabel   string     `json:"type_label"`
	TypeColor   string     `json:"type_color"`
	SourceLabel string     `json:"source_label"`
	SourceColor string     `json:"source_color"`
	FileType    string     `json:"file_type"`
	SizeLabel   string     `json:"size"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	ImageCount  int        `json:"image_count,omitempty"`
	URL         string     `json:"url"`
}

// ImageLineage classifies where a gallery thumbnail came from.
type ImageLineage string

// Thumbnail lineages.
const (
	LineagePDFPage       ImageLineage = "pdf_page"
	LineageMarkdownImage ImageLineage = "markdown_image"
	LineageDocxImage     ImageLineage = "docx_image"
)

// GalleryImage is one thumbnail of the derived image gallery.
type GalleryImage struct {
	Src        string       `json:"src"`
	ModalSrc   string       `json:"modal_src"`
	Original   string       `json:"original"`
	DocID      string       `json:"doc_id"`
	DocName    string       `json:"doc_name"`
	DocType    string       `json:"doc_type"`
	ImageIndex int          `json:"image_index"`
	Lineage    ImageLineage `json:"lineage"`
}

// Label returns "Page N" for PDF pages and "Image N" otherwise.
func (g GalleryImage) Label() string {
	if g.Lineage == LineagePDFPage {
		return "Page " + strconv.Itoa(g.ImageIndex)
	}
	return "Image " + strconv.Itoa(g.ImageIndex)
}

// PageButton is one numbered button of the pagination bar.
type PageButton struct {
	Page   int  `json:"page"`
	Active bool `json:"active"`
}

// PageBar is the pagination control for a result page.
type PageBar struct {
	Current          int          `json:"current"`
	Total            int          `json:"total"`
	PrevDisabled     bool         `json:"prev_disabled"`
	NextDisabled     bool         `json:"next_disabled"`
	ShowFirst        bool         `json:"show_first"`
	LeadingEllipsis  bool         `json:"leading_ellipsis"`
	Pages            []PageButton `json:"pages"`
	TrailingEllipsis bool         `json:"trailing_ellipsis"`
	ShowLast         bool         `json:"show_last"`
}
