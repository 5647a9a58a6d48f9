package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

func TestBuildCitations(t *testing.T) {
	var results []domain.Record
	for i := 1; i <= 6; i++ {
		results = append(results, domain.Record{ID: fmt.Sprintf("d%d", i), Filename: fmt.Sprintf("f%d.pdf", i), FileType: ".pdf", FileSize: size(2048)})
	}
	results[1].Filename = ""
	results[1].FileType = ""
	results[1].FileSize = size(0)

	citations := BuildCitations(results, "tax forms")
	require.Len(t, citations, MaxCitations)

	assert.Equal(t, domain.Citation{ID: 1, Title: "f1.pdf", URL: "/view/d1?q=tax%20forms", FileType: ".pdf", FileSize: "2 KB"}, citations[0])
	assert.Equal(t, "Document 2", citations[1].Title)
	assert.Equal(t, "unknown", citations[1].FileType)
	assert.Equal(t, "Unknown", citations[1].FileSize)
	assert.Equal(t, 5, citations[4].ID)
}

func TestSelectCitations(t *testing.T) {
	results := []domain.Record{{ID: "a", Filename: "a.txt"}}

	withLinks := domain.Summary{Citations: []domain.Citation{{ID: 1, Title: "backend", URL: "/view/x"}}}
	assert.Equal(t, "backend", SelectCitations(withLinks, results, "q")[0].Title)

	withoutLinks := domain.Summary{Citations: []domain.Citation{{ID: 1, Title: "backend"}}}
	assert.Equal(t, "a.txt", SelectCitations(withoutLinks, results, "q")[0].Title)
}

func TestAddClickableCitations(t *testing.T) {
	citations := []domain.Citation{
		{ID: 1, Title: `The "Guide"`, URL: "/view/a?q=x", FileType: ".pdf", FileSize: "1 KB"},
	}

	got := AddClickableCitations("<p>See [1] and [9].</p>", citations)
	want := `<p>See <a href="/view/a?q=x" class="citation-link" title="The &#34;Guide&#34; (.pdf • 1 KB)" data-citation-id="1">[1]</a> and [9].</p>`
	assert.Equal(t, want, got)

	assert.Equal(t, "[1]", AddClickableCitations("[1]", nil))
}

func TestAddClickableCitations_EscapesFields(t *testing.T) {
	citations := []domain.Citation{
		{ID: 1, Title: `<img src=x onerror=alert(1)>`, URL: `javascript:alert(1)`, FileType: `"><b>`, FileSize: "<1 KB"},
		{ID: 2, Title: "Guide", URL: `/view/b?q=a&page=2" onmouseover="x`, FileType: ".md", FileSize: "2 KB"},
		{ID: 3, Title: "Remote", URL: "//evil.example/x", FileType: ".txt", FileSize: "1 KB"},
		{ID: 4, Title: "Web", URL: "https://go.dev/doc", FileType: ".txt", FileSize: "1 KB"},
	}

	got := AddClickableCitations("[1] [2] [3] [4]", citations)

	assert.NotContains(t, got, "<img")
	assert.NotContains(t, got, "<b>")
	assert.NotContains(t, got, "javascript:")
	assert.NotContains(t, got, `" onmouseover=`)
	assert.Contains(t, got, `<a href="#" class="citation-link" title="&lt;img src=x onerror=alert(1)&gt; (&#34;&gt;&lt;b&gt; • &lt;1 KB)" data-citation-id="1">[1]</a>`)
	assert.Contains(t, got, `href="/view/b?q=a&amp;page=2&#34; onmouseover=&#34;x"`)
	assert.Contains(t, got, `<a href="#" class="citation-link" title="Remote (.txt • 1 KB)" data-citation-id="3">[3]</a>`)
	assert.Contains(t, got, `href="https://go.dev/doc"`)
	assert.Len(t, RankSources(got, citations), 3)
}

func TestCitationHref(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/view/a?q=x", "/view/a?q=x"},
		{"https://go.dev", "https://go.dev"},
		{" JavaScript:alert(1)", "#"},
		{"data:text/html,hi", "#"},
		{"//evil.example", "#"},
		{"", "#"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, citationHref(tt.raw), tt.raw)
	}
}

func TestRankSources(t *testing.T) {
	citations := []domain.Citation{
		{ID: 1, Title: "one", URL: "/1"},
		{ID: 2, Title: "two", URL: "/2"},
		{ID: 3, Title: "three", URL: "/3"},
		{ID: 4, Title: "four", URL: "/4"},
		{ID: 5, Title: "five", URL: "/5"},
	}
	html := AddClickableCitations("[2] [2] [1] [3] [4] [4] [2]", citations)

	ranked := RankSources(html, citations)
	require.Len(t, ranked, TopSources)
	assert.Equal(t, "two", ranked[0].Title)
	assert.Equal(t, 3, ranked[0].Count)
	assert.Equal(t, "four", ranked[1].Title)
	assert.Equal(t, "one", ranked[2].Title, "ties keep citation order")

	assert.Empty(t, RankSources("<p>no links</p>", citations))
}
