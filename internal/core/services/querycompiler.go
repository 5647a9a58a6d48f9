package services

import (
	"fmt"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// CompileQuery converts a parsed query and its page into a Meilisearch request.
// Image queries cannot be compiled; they navigate to the gallery instead.
func CompileQuery(q domain.Query, state domain.PageState, sort domain.SortOrder) (domain.SearchRequest, error) {
	req := newSearchRequest(state, sort)

	switch q.Kind {
	case domain.QueryKindImage:
		return domain.SearchRequest{}, fmt.Errorf("compile %q: %w", q.Raw, domain.ErrImageMode)
	case domain.QueryKindAdvanced:
		req.Query, req.Filter = compileAdvanced(q.Segments)
	default:
		req.Query, req.Filter = compileSimple(q)
	}
	return req, nil
}

// CompileImageQuery builds the gallery request: only documents carrying
// images, fifty to a page.
func CompileImageQuery(text string, state domain.PageState) domain.SearchRequest {
	size := state.PageSize
	if size <= 0 {
		size = domain.ImagePageSize
	}
	return domain.SearchRequest{
		Query:                 text,
		Filter:                domain.HasImagesFilter,
		Limit:                 size,
		Offset:                state.Offset(),
		AttributesToHighlight: domain.HighlightAttributes,
	}
}

// CompileExplore builds the browse request for a type pill.
func CompileExplore(filter domain.ExploreFilter, sort domain.SortOrder, offset, limit int) domain.SearchRequest {
	return domain.SearchRequest{
		Query:  "",
		Filter: ExploreFilterExpression(filter),
		Sort:   []string{sort.Rule()},
		Limit:  limit,
		Offset: offset,
	}
}

// ExploreFilterExpression returns the filter for a type pill.
// The image pill matches any image extension; "all" matches everything.
func ExploreFilterExpression(filter domain.ExploreFilter) string {
	token := strings.ToLower(strings.TrimSpace(string(filter)))
	switch {
	case token == "" || filter == domain.ExploreAll:
		return ""
	case token == "image" || token == "images":
		parts := make([]string, 0, len(domain.ImageTypes))
		for _, ext := range domain.ImageTypes {
			parts = append(parts, fileTypePredicate(ext))
		}
		return strings.Join(parts, " OR ")
	default:
		return typePredicate(token)
	}
}

func newSearchRequest(state domain.PageState, sort domain.SortOrder) domain.SearchRequest {
	size := state.PageSize
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	if sort == "" {
		sort = domain.SortRecent
	}
	return domain.SearchRequest{
		Sort:                  []string{sort.Rule()},
		Limit:                 size,
		Offset:                state.Offset(),
		AttributesToHighlight: domain.HighlightAttributes,
		HighlightPreTag:       domain.HighlightPreTag,
		HighlightPostTag:      domain.HighlightPostTag,
	}
}

func compileSimple(q domain.Query) (query, filter string) {
	switch {
	case q.SourceFilter != "":
		source, _ := domain.SourceForToken(q.SourceFilter)
		filter = sourcePredicate(source)
	case q.FileFilter != "":
		filter = fileTypePredicate(q.FileFilter)
	}

	query = q.Text
	if query == "*" {
		query = ""
	}
	return query, filter
}

func compileAdvanced(segments []domain.Segment) (query, filter string) {
	var terms, includes, excludes []string

	for _, seg := range segments {
		if seg.Terms != "" {
			terms = append(terms, seg.Terms)
		}
		if len(seg.Types) == 0 {
			continue
		}

		predicates := make([]string, 0, len(seg.Types))
		for _, t := range seg.Types {
			predicates = append(predicates, typePredicate(t))
		}
		segFilter := predicates[0]
		if len(predicates) > 1 {
			segFilter = "(" + strings.Join(predicates, " OR ") + ")"
		}

		if seg.Operator == domain.OperatorNot {
			excludes = append(excludes, segFilter)
		} else {
			includes = append(includes, segFilter)
		}
	}

	if len(includes) > 0 {
		filter = "(" + strings.Join(includes, " OR ") + ")"
	}
	if len(excludes) > 0 {
		not := "NOT (" + strings.Join(excludes, " OR ") + ")"
		if filter != "" {
			filter += " AND " + not
		} else {
			filter = not
		}
	}
	return strings.Join(terms, " "), filter
}

// typePredicate maps a ::TYPE token to its source or file_type predicate.
func typePredicate(token string) string {
	if source, ok := domain.SourceForToken(token); ok {
		return sourcePredicate(source)
	}
	return fileTypePredicate(token)
}

func sourcePredicate(source domain.Source) string {
	return fmt.Sprintf("source = %q", string(source))
}

func fileTypePredicate(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("file_type = %q", ext)
}
