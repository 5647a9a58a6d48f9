package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

func firstPage() domain.PageState {
	return domain.PageState{Page: 1, PageSize: domain.DefaultPageSize}
}

func TestCompileQuery_SimpleFileFilter(t *testing.T) {
	req, err := CompileQuery(ParseQuery("kubernetes::pdf"), firstPage(), domain.SortRecent)
	require.NoError(t, err)

	assert.Equal(t, domain.SearchRequest{
		Query:                 "kubernetes",
		Filter:                `file_type = ".pdf"`,
		Sort:                  []string{"uploaded_at:desc"},
		Limit:                 10,
		Offset:                0,
		AttributesToHighlight: []string{"filename", "content"},
		HighlightPreTag:       "<em>",
		HighlightPostTag:      "</em>",
	}, req)
}

func TestCompileQuery_Simple(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		query  string
		filter string
	}{
		{name: "no filter", input: "hello world", query: "hello world"},
		{name: "match all", input: "*", query: ""},
		{name: "source maps to stored value", input: "ubuntu::torrent", query: "ubuntu", filter: `source = "qbittorrent"`},
		{name: "vault source", input: "tax::vault", query: "tax", filter: `source = "vault"`},
		{name: "unknown type kept literally", input: "::xyzzy", query: "", filter: `file_type = ".xyzzy"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := CompileQuery(ParseQuery(tt.input), firstPage(), "")
			require.NoError(t, err)
			assert.Equal(t, tt.query, req.Query)
			assert.Equal(t, tt.filter, req.Filter)
		})
	}
}

func TestCompileQuery_Advanced(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		query  string
		filter string
	}{
		{
			name:   "include and exclude",
			input:  "foo::&&bar::pdf::!vault",
			query:  "foo bar",
			filter: `(file_type = ".pdf") AND NOT (source = "vault")`,
		},
		{
			name:   "segment with several types",
			input:  "report::pdf::md",
			query:  "report",
			filter: `((file_type = ".pdf" OR file_type = ".md"))`,
		},
		{
			name:   "two include segments",
			input:  "a::pdf::||b::docx",
			query:  "a b",
			filter: `(file_type = ".pdf" OR file_type = ".docx")`,
		},
		{
			name:   "exclude only",
			input:  "::!vault",
			query:  "",
			filter: `NOT (source = "vault")`,
		},
		{
			name:  "terms only",
			input: "foo::||bar",
			query: "foo bar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := CompileQuery(ParseQuery(tt.input), firstPage(), domain.SortRecent)
			require.NoError(t, err)
			assert.Equal(t, tt.query, req.Query)
			assert.Equal(t, tt.filter, req.Filter)
		})
	}
}

func TestCompileQuery_Pagination(t *testing.T) {
	state := domain.PageState{Page: 3, PageSize: 10}

	req, err := CompileQuery(ParseQuery("x"), state, domain.SortName)
	require.NoError(t, err)

	assert.Equal(t, 20, req.Offset)
	assert.Equal(t, 10, req.Limit)
	assert.Equal(t, []string{"filename:asc"}, req.Sort)
}

func TestCompileQuery_ImageModeRejected(t *testing.T) {
	_, err := CompileQuery(ParseQuery("cats::image"), firstPage(), "")
	assert.ErrorIs(t, err, domain.ErrImageMode)
}

func TestCompileQuery_Deterministic(t *testing.T) {
	inputs := []string{"kubernetes::pdf", "foo::&&bar::pdf::!vault", "a::pdf::md::!zip", "*"}
	for _, in := range inputs {
		a, err := CompileQuery(ParseQuery(in), firstPage(), domain.SortSize)
		require.NoError(t, err)
		b, err := CompileQuery(ParseQuery(in), firstPage(), domain.SortSize)
		require.NoError(t, err)
		assert.Equal(t, a, b, in)
	}
}

func TestCompileImageQuery(t *testing.T) {
	req := CompileImageQuery("cats", domain.PageState{Page: 2, PageSize: domain.ImagePageSize})

	assert.Equal(t, "cats", req.Query)
	assert.Equal(t, "has_images = true", req.Filter)
	assert.Equal(t, 50, req.Limit)
	assert.Equal(t, 50, req.Offset)
	assert.Nil(t, req.Sort)
}

func TestExploreFilterExpression(t *testing.T) {
	assert.Equal(t, "", ExploreFilterExpression(domain.ExploreAll))
	assert.Equal(t, "", ExploreFilterExpression(""))
	assert.Equal(t, `file_type = ".pdf"`, ExploreFilterExpression("pdf"))
	assert.Equal(t, `source = "zim"`, ExploreFilterExpression("zim"))
	assert.Equal(t,
		`file_type = ".jpg" OR file_type = ".jpeg" OR file_type = ".png" OR file_type = ".gif" OR file_type = ".webp" OR file_type = ".svg" OR file_type = ".bmp"`,
		ExploreFilterExpression("image"))
}

func TestCompileExplore(t *testing.T) {
	req := CompileExplore("md", domain.SortSize, 80, domain.ExplorePageSize)

	assert.Equal(t, "", req.Query)
	assert.Equal(t, `file_type = ".md"`, req.Filter)
	assert.Equal(t, []string{"file_size:desc"}, req.Sort)
	assert.Equal(t, 40, req.Limit)
	assert.Equal(t, 80, req.Offset)
}
