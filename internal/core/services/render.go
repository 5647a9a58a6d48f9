package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// GalleryPreviewSize is how many gallery thumbnails sit beside the results
// before the "view more" link takes over.
const GalleryPreviewSize = 7

// NoContent replaces an empty record body.
const NoContent = "No content available"

var (
	pdfPagePattern       = regexp.MustCompile(`_page_(\d+)_`)
	markdownImagePattern = regexp.MustCompile(`_markdown_(\d+)_`)
)

// NormalizeHits prefers highlighted fields and fills in the defaults the
// result view relies on. Hits without a source belong to the vault.
func NormalizeHits(hits []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(hits))
	for _, hit := range hits {
		rec := hit
		if f := hit.Formatted; f != nil {
			if f.Filename != "" {
				rec.Filename = f.Filename
			}
			if f.Content != "" {
				rec.Content = f.Content
			}
		}
		if rec.Content == "" {
			rec.Content = NoContent
		}
		if rec.Source == domain.SourceUnset {
			rec.Source = domain.SourceVault
		}
		rec.Formatted = nil
		out = append(out, rec)
	}
	return out
}

// NarrowAll converts records into typed results.
func NarrowAll(records []domain.Record) []domain.Result {
	out := make([]domain.Result, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Narrow(rec))
	}
	return out
}

// BuildCards renders one card per result. Cards link back to the viewer
// carrying the query and page so the viewer can return to this page.
func BuildCards(results []domain.Result, query string, page int) []domain.ResultCard {
	cards := make([]domain.ResultCard, 0, len(results))
	for _, res := range results {
		cards = append(cards, BuildCard(res, query, page))
	}
	return cards
}

// BuildCard renders the display model of a single result.
func BuildCard(res domain.Result, query string, page int) domain.ResultCard {
	rec := res.Record()
	badge := cardBadge(rec.Filename)

	card := domain.ResultCard{
		ID:          rec.ID,
		Kind:        res.Kind(),
		Locked:      res.Locked(),
		Title:       rec.Filename,
		TypeLabel:   badge.Label,
		TypeColor:   badge.Color,
		SourceLabel: rec.Source.Label(),
		SourceColor: rec.Source.Color(),
		FileType:    strings.ToUpper(rec.Extension()),
		SizeLabel:   FormatFileSize(rec.FileSize),
		URL:         domain.ViewURL(rec.ID, query, page),
	}

	switch r := unwrapVault(res).(type) {
	case domain.ImageResult:
		card.Thumbnail = ThumbnailURL(rec.ID)
	case domain.DocumentResult:
		card.Snippet = Snippet(rec.Content)
		card.Thumbnail = r.Thumbnail
		if rec.HasImages {
			card.ImageCount = rec.ImageCount
		}
	}
	return card
}

// ThumbnailURL returns the backend thumbnail of an image document.
func ThumbnailURL(docID string) string {
	return "/api/thumbnail/" + docID
}

func unwrapVault(res domain.Result) domain.Result {
	if v, ok := res.(domain.VaultResult); ok {
		return v.Inner
	}
	return res
}

// cardBadge picks the badge by filename extension. Unknown extensions
// share the plain-text badge.
func cardBadge(filename string) domain.FileTypeStyle {
	ext := filename
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i+1:]
	}
	switch strings.ToLower(ext) {
	case "pdf":
		return domain.FileTypeStyle{Label: "PDF", Color: "#f85149"}
	case "docx", "doc":
		return domain.FileTypeStyle{Label: "DOC", Color: "#58a6ff"}
	case "md":
		return domain.FileTypeStyle{Label: "MD", Color: "#3fb950"}
	default:
		return domain.FileTypeStyle{Label: "TXT", Color: "#8b949e"}
	}
}

// Snippet truncates content to the snippet length, marking the cut.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= domain.DefaultSnippetLength {
		return content
	}
	return string(runes[:domain.DefaultSnippetLength]) + "..."
}

// CollectGallery flattens the embedded images of every record on the page.
// Only records flagged has_images contribute.
func CollectGallery(records []domain.Record) []domain.GalleryImage {
	var images []domain.GalleryImage
	for _, rec := range records {
		if !rec.HasImages {
			continue
		}
		for i, path := range rec.AllImages {
			lineage, index := classifyImage(path, i)
			medium := MediumSource(path)
			images = append(images, domain.GalleryImage{
				Src:        medium,
				ModalSrc:   ModalSource(medium),
				Original:   path,
				DocID:      rec.ID,
				DocName:    rec.Filename,
				DocType:    rec.FileType,
				ImageIndex: index,
				Lineage:    lineage,
			})
		}
	}
	return images
}

// classifyImage derives the lineage and 1-based index of a thumbnail path.
// DOCX images carry no index in their name and use their position.
func classifyImage(path string, position int) (domain.ImageLineage, int) {
	if strings.Contains(path, "_page_") {
		if m := pdfPagePattern.FindStringSubmatch(path); m != nil {
			n, _ := strconv.Atoi(m[1])
			return domain.LineagePDFPage, n + 1
		}
		return domain.LineagePDFPage, position + 1
	}
	if strings.Contains(path, "_markdown_") {
		if m := markdownImagePattern.FindStringSubmatch(path); m != nil {
			n, _ := strconv.Atoi(m[1])
			return domain.LineageMarkdownImage, n + 1
		}
		return domain.LineageMarkdownImage, position + 1
	}
	return domain.LineageDocxImage, position + 1
}

// thumbnailExt returns the extension family of a thumbnail path.
func thumbnailExt(path string) string {
	if strings.Contains(path, ".jpg") {
		return ".jpg"
	}
	return ".webp"
}

// MediumSource swaps a small thumbnail for its medium variant.
func MediumSource(path string) string {
	ext := thumbnailExt(path)
	return strings.Replace(path, "_small"+ext, "_medium"+ext, 1)
}

// ModalSource returns the full-screen variant of a thumbnail.
func ModalSource(path string) string {
	ext := thumbnailExt(path)
	for _, size := range []string{"_small", "_medium", "_large"} {
		if strings.Contains(path, size+ext) {
			return strings.Replace(path, size+ext, "_modal"+ext, 1)
		}
	}
	return path
}

// FallbackSource steps one size down after a load failure:
// modal, large, medium, small. It returns false once nothing smaller exists
// and the caller should show a placeholder icon.
func FallbackSource(path string) (string, bool) {
	ext := thumbnailExt(path)
	steps := [][2]string{
		{"_modal", "_large"},
		{"_large", "_medium"},
		{"_medium", "_small"},
	}
	for _, step := range steps {
		if strings.Contains(path, step[0]+ext) {
			return strings.Replace(path, step[0]+ext, step[1]+ext, 1), true
		}
	}
	return "", false
}

// FallbackChain lists every source to try for a modal preview, in order.
func FallbackChain(modal string) []string {
	chain := []string{modal}
	for next, ok := FallbackSource(modal); ok; next, ok = FallbackSource(next) {
		chain = append(chain, next)
	}
	return chain
}

// BuildPageBar lays out at most MaxVisiblePages numbered buttons around the
// current page. It returns nil when everything fits on one page.
func BuildPageBar(current, total int) *domain.PageBar {
	if total <= 1 {
		return nil
	}

	start := max(1, current-domain.MaxVisiblePages/2)
	end := min(total, start+domain.MaxVisiblePages-1)
	if end-start < domain.MaxVisiblePages-1 {
		start = max(1, end-domain.MaxVisiblePages+1)
	}

	bar := &domain.PageBar{
		Current:          current,
		Total:            total,
		PrevDisabled:     current == 1,
		NextDisabled:     current == total,
		ShowFirst:        start > 1,
		LeadingEllipsis:  start > 2,
		TrailingEllipsis: end < total-1,
		ShowLast:         end < total,
	}
	for p := start; p <= end; p++ {
		bar.Pages = append(bar.Pages, domain.PageButton{Page: p, Active: p == current})
	}
	return bar
}

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with one decimal, dropping a
// trailing ".0". A missing size is "Unknown".
func FormatFileSize(bytes *int64) string {
	if bytes == nil || *bytes < 0 {
		return "Unknown"
	}
	if *bytes == 0 {
		return "0 Bytes"
	}

	b := float64(*bytes)
	i := int(math.Floor(math.Log(b) / math.Log(1024)))
	i = min(i, len(fileSizeUnits)-1)

	v := strconv.FormatFloat(b/math.Pow(1024, float64(i)), 'f', 1, 64)
	v = strings.TrimSuffix(v, ".0")
	return v + " " + fileSizeUnits[i]
}

// FormatStats renders the line above the result list.
func FormatStats(state domain.PageState, processingMs int) string {
	hits := humanize.Comma(int64(state.TotalHits))
	if state.TotalHits > 0 {
		return fmt.Sprintf("Page %d of %d (%s results in %dms)", state.Page, state.TotalPages(), hits, processingMs)
	}
	return fmt.Sprintf("About %s results (%dms)", hits, processingMs)
}
