package services

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// Citation limits.
const (
	MaxCitations = 5
	TopSources   = 3
)

var (
	citationMarker = regexp.MustCompile(`\[(\d+)\]`)
	citationLinkID = regexp.MustCompile(`data-citation-id="(\d+)"`)
)

// BuildCitations numbers the leading results 1..5 so a summary's [N]
// markers can link back to them.
func BuildCitations(results []domain.Record, query string) []domain.Citation {
	n := min(len(results), MaxCitations)
	citations := make([]domain.Citation, 0, n)
	for i, rec := range results[:n] {
		c := domain.Citation{
			ID:       i + 1,
			Title:    rec.Filename,
			URL:      domain.ViewURL(rec.ID, query, 0),
			FileType: rec.FileType,
			FileSize: "Unknown",
		}
		if c.Title == "" {
			c.Title = fmt.Sprintf("Document %d", i+1)
		}
		if c.FileType == "" {
			c.FileType = "unknown"
		}
		if rec.FileSize != nil && *rec.FileSize != 0 {
			c.FileSize = FormatFileSize(rec.FileSize)
		}
		citations = append(citations, c)
	}
	return citations
}

// SelectCitations prefers citations supplied by the backend when they carry
// links, otherwise numbers the results locally.
func SelectCitations(s domain.Summary, results []domain.Record, query string) []domain.Citation {
	if len(s.Citations) > 0 && s.Citations[0].URL != "" {
		return s.Citations
	}
	return BuildCitations(results, query)
}

// AddClickableCitations turns each [N] marker that names a known citation
// into a link. Unknown markers are left alone. Citation fields are escaped
// and links other than http(s) or local paths are replaced by "#".
func AddClickableCitations(doc string, citations []domain.Citation) string {
	if len(citations) == 0 {
		return doc
	}

	byID := make(map[string]domain.Citation, len(citations))
	for _, c := range citations {
		byID[strconv.Itoa(c.ID)] = c
	}

	return citationMarker.ReplaceAllStringFunc(doc, func(match string) string {
		num := match[1 : len(match)-1]
		c, ok := byID[num]
		if !ok {
			return match
		}
		return fmt.Sprintf(`<a href="%s" class="citation-link" title="%s (%s • %s)" data-citation-id="%d">[%s]</a>`,
			html.EscapeString(citationHref(c.URL)), html.EscapeString(c.Title),
			html.EscapeString(c.FileType), html.EscapeString(c.FileSize), c.ID, num)
	})
}

// citationHref keeps relative links and http(s) URLs.
func citationHref(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "":
		if u.Host != "" {
			return "#"
		}
		return raw
	case "http", "https":
		return raw
	default:
		return "#"
	}
}

// RankSources counts citation links in rendered HTML and returns the three
// most cited sources. Ties keep citation order.
func RankSources(doc string, citations []domain.Citation) []domain.RankedSource {
	counts := make(map[string]int)
	for _, m := range citationLinkID.FindAllStringSubmatch(doc, -1) {
		counts[m[1]]++
	}

	var ranked []domain.RankedSource
	for _, c := range citations {
		if n := counts[strconv.Itoa(c.ID)]; n > 0 {
			ranked = append(ranked, domain.RankedSource{Citation: c, Count: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > TopSources {
		ranked = ranked[:TopSources]
	}
	return ranked
}
