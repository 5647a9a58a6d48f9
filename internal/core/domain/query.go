package domain

import "strings"

// QueryKind identifies which variant a parsed Query holds.
type QueryKind string

// Query variants. Exactly one applies to any parsed input.
const (
	// QueryKindSimple is free text with at most one ::TOKEN filter.
	QueryKindSimple QueryKind = "simple"

	// QueryKindAdvanced is a compound query of operator-separated segments.
	QueryKindAdvanced QueryKind = "advanced"

	// QueryKindImage redirects to the image gallery instead of searching.
	QueryKindImage QueryKind = "image"
)

// Operator joins advanced query segments.
type Operator string

// Segment operators.
const (
	OperatorNone Operator = ""
	OperatorAnd  Operator = "AND"
	OperatorOr   Operator = "OR"
	OperatorNot  Operator = "NOT"
)

// Operator tokens as typed by the user.
const (
	TokenAnd   = "::&&"
	TokenOr    = "::||"
	TokenNot   = "::!"
	TokenImage = "::image"
	Separator  = "::"
)

// OperatorForToken maps a raw operator token to its Operator.
func OperatorForToken(token string) Operator {
	switch token {
	case TokenAnd:
		return OperatorAnd
	case TokenOr:
		return OperatorOr
	case TokenNot:
		return OperatorNot
	default:
		return OperatorNone
	}
}

// Token returns the user-facing token for the operator.
func (o Operator) Token() string {
	switch o {
	case OperatorAnd:
		return TokenAnd
	case OperatorOr:
		return TokenOr
	case OperatorNot:
		return TokenNot
	default:
		return ""
	}
}

// Segment is one operator-delimited part of an advanced query.
type Segment struct {
	// Terms is the space-joined free text of the segment.
	Terms string `json:"terms"`

	// Types holds lowercased ::TYPE tokens without duplicates.
	Types []string `json:"types"`

	// Operator is the operator that opened the segment.
	Operator Operator `json:"operator,omitempty"`
}

// IsEmpty reports whether the segment carries neither terms nor types.
func (s Segment) IsEmpty() bool {
	return s.Terms == "" && len(s.Types) == 0
}

// HasType reports whether t is already recorded on the segment.
func (s Segment) HasType(t string) bool {
	for _, existing := range s.Types {
		if existing == t {
			return true
		}
	}
	return false
}

// Query is the parsed form of a search string.
type Query struct {
	// Kind selects the active variant.
	Kind QueryKind `json:"kind"`

	// Raw is the original input.
	Raw string `json:"raw"`

	// Text is the free text for simple and image queries.
	Text string `json:"text,omitempty"`

	// FileFilter is the file-type token of a simple query, without a leading dot.
	FileFilter string `json:"file_filter,omitempty"`

	// SourceFilter is the source token of a simple query (torrent, vault, zim, zip).
	SourceFilter string `json:"source_filter,omitempty"`

	// Segments holds the parts of an advanced query.
	Segments []Segment `json:"segments,omitempty"`
}

// IsEmpty reports whether executing the query would search for nothing.
func (q Query) IsEmpty() bool {
	switch q.Kind {
	case QueryKindAdvanced:
		return len(q.Segments) == 0
	case QueryKindImage:
		return q.Text == ""
	default:
		return q.Text == "" && q.FileFilter == "" && q.SourceFilter == ""
	}
}

// FileTypeTokens are the recognised ::TYPE file extensions.
var FileTypeTokens = []string{"pdf", "txt", "docx", "doc", "md", "jpg", "jpeg", "png", "gif", "webp", "svg", "bmp"}

// ImageTypes are the extensions treated as images.
var ImageTypes = []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp"}

// sourceTokens maps user tokens to stored source values.
var sourceTokens = map[string]Source{
	"torrent": SourceQBittorrent,
	"vault":   SourceVault,
	"zim":     SourceZim,
	"zip":     SourceZip,
}

// SourceTokens lists the recognised source tokens in display order.
var SourceTokens = []string{"torrent", "vault", "zim", "zip"}

// SourceForToken returns the stored source value for a token.
func SourceForToken(token string) (Source, bool) {
	s, ok := sourceTokens[strings.ToLower(token)]
	return s, ok
}

// IsFileTypeToken reports whether token is a recognised file type.
func IsFileTypeToken(token string) bool {
	return contains(FileTypeTokens, strings.ToLower(token))
}

// IsImageType reports whether ext (with or without dot) is an image extension.
func IsImageType(ext string) bool {
	return contains(ImageTypes, strings.TrimPrefix(strings.ToLower(ext), "."))
}

// AllowedTypeTokens returns every token the validator accepts after ::,
// in the order suggestions are shown.
func AllowedTypeTokens() []string {
	out := make([]string, 0, len(FileTypeTokens)+1+len(SourceTokens))
	out = append(out, FileTypeTokens...)
	out = append(out, "image")
	out = append(out, SourceTokens...)
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
