package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

func size(n int64) *int64 { return &n }

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		in   *int64
		want string
	}{
		{nil, "Unknown"},
		{size(0), "0 Bytes"},
		{size(512), "512 Bytes"},
		{size(1024), "1 KB"},
		{size(1536), "1.5 KB"},
		{size(1048576), "1 MB"},
		{size(3 * 1024 * 1024 * 1024), "3 GB"},
		{size(5 * 1024 * 1024 * 1024 * 1024), "5120 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.in))
	}
}

func TestBuildPageBar_SinglePage(t *testing.T) {
	assert.Nil(t, BuildPageBar(1, 1))
	assert.Nil(t, BuildPageBar(1, 0))
}

func TestBuildPageBar_FirstPage(t *testing.T) {
	bar := BuildPageBar(1, 3)
	require.NotNil(t, bar)

	assert.True(t, bar.PrevDisabled)
	assert.False(t, bar.NextDisabled)
	assert.False(t, bar.ShowFirst)
	assert.False(t, bar.ShowLast)
	require.Len(t, bar.Pages, 3)
	assert.True(t, bar.Pages[0].Active)
	assert.False(t, bar.Pages[1].Active)
}

func TestBuildPageBar_Middle(t *testing.T) {
	bar := BuildPageBar(10, 50)
	require.NotNil(t, bar)

	assert.Equal(t, 5, bar.Pages[0].Page)
	assert.Equal(t, 14, bar.Pages[len(bar.Pages)-1].Page)
	assert.Len(t, bar.Pages, domain.MaxVisiblePages)
	assert.True(t, bar.ShowFirst)
	assert.True(t, bar.LeadingEllipsis)
	assert.True(t, bar.TrailingEllipsis)
	assert.True(t, bar.ShowLast)
	assert.False(t, bar.PrevDisabled)
	assert.False(t, bar.NextDisabled)

	var active []int
	for _, p := range bar.Pages {
		if p.Active {
			active = append(active, p.Page)
		}
	}
	assert.Equal(t, []int{10}, active)
}

func TestBuildPageBar_LastPage(t *testing.T) {
	bar := BuildPageBar(50, 50)
	require.NotNil(t, bar)

	assert.Equal(t, 41, bar.Pages[0].Page)
	assert.Equal(t, 50, bar.Pages[len(bar.Pages)-1].Page)
	assert.True(t, bar.NextDisabled)
	assert.False(t, bar.ShowLast)
	assert.False(t, bar.TrailingEllipsis)
}

func TestBuildPageBar_NoEllipsisNextToEdge(t *testing.T) {
	bar := BuildPageBar(7, 11)
	require.NotNil(t, bar)

	assert.Equal(t, 2, bar.Pages[0].Page)
	assert.Equal(t, 11, bar.Pages[len(bar.Pages)-1].Page)
	assert.True(t, bar.ShowFirst)
	assert.False(t, bar.LeadingEllipsis)
}

func TestSnippet(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, Snippet(short))

	long := strings.Repeat("a", 301)
	got := Snippet(long)
	assert.Equal(t, strings.Repeat("a", 300)+"...", got)
}

func TestNormalizeHits(t *testing.T) {
	hits := []domain.Record{
		{
			ID:        "1",
			Filename:  "plain.pdf",
			Content:   "plain body",
			Source:    domain.SourceFolder,
			Formatted: &domain.FormattedFields{Filename: "<em>plain</em>.pdf", Content: "<em>plain</em> body"},
		},
		{ID: "2", Filename: "empty.txt"},
	}

	got := NormalizeHits(hits)
	require.Len(t, got, 2)

	assert.Equal(t, "<em>plain</em>.pdf", got[0].Filename)
	assert.Equal(t, "<em>plain</em> body", got[0].Content)
	assert.Equal(t, domain.SourceFolder, got[0].Source)
	assert.Nil(t, got[0].Formatted)

	assert.Equal(t, NoContent, got[1].Content)
	assert.Equal(t, domain.SourceVault, got[1].Source)
}

func TestBuildCard_Templates(t *testing.T) {
	t.Run("vault document", func(t *testing.T) {
		rec := domain.Record{ID: "abc", Filename: "tax.pdf", FileType: ".pdf", Content: "body", Source: domain.SourceVault, FileSize: size(2048)}
		card := BuildCard(domain.Narrow(rec), "foo bar", 2)

		assert.Equal(t, domain.ResultKindDocument, card.Kind)
		assert.True(t, card.Locked)
		assert.Equal(t, "PDF", card.TypeLabel)
		assert.Equal(t, "Vault", card.SourceLabel)
		assert.Equal(t, "2 KB", card.SizeLabel)
		assert.Equal(t, "body", card.Snippet)
		assert.Equal(t, "/view/abc?q=foo%20bar&page=2", card.URL)
	})

	t.Run("document with images", func(t *testing.T) {
		rec := domain.Record{
			ID: "d1", Filename: "guide.docx", FileType: ".docx", Source: domain.SourceFolder,
			HasImages: true, ImageCount: 4, FirstImage: "/thumbs/d1_img_small.webp",
		}
		card := BuildCard(domain.Narrow(rec), "q", 1)

		assert.Equal(t, domain.ResultKindDocumentWithImages, card.Kind)
		assert.False(t, card.Locked)
		assert.Equal(t, "DOC", card.TypeLabel)
		assert.Equal(t, "/thumbs/d1_img_small.webp", card.Thumbnail)
		assert.Equal(t, 4, card.ImageCount)
	})

	t.Run("image", func(t *testing.T) {
		rec := domain.Record{ID: "i1", Filename: "cat.png", FileType: ".png", Source: domain.SourceQBittorrent}
		card := BuildCard(domain.Narrow(rec), "cat", 1)

		assert.Equal(t, domain.ResultKindImage, card.Kind)
		assert.Equal(t, "/api/thumbnail/i1", card.Thumbnail)
		assert.Equal(t, "qBittorrent", card.SourceLabel)
		assert.Equal(t, "TXT", card.TypeLabel)
		assert.Empty(t, card.Snippet)
	})
}

func TestCollectGallery(t *testing.T) {
	records := []domain.Record{
		{
			ID: "p", Filename: "book.pdf", FileType: ".pdf", HasImages: true,
			AllImages: []string{"/t/book_page_0_small.jpg", "/t/book_page_7_small.jpg"},
		},
		{
			ID: "m", Filename: "notes.md", FileType: ".md", HasImages: true,
			AllImages: []string{"/t/notes_markdown_4_small.webp"},
		},
		{
			ID: "w", Filename: "guide.docx", FileType: ".docx", HasImages: true,
			AllImages: []string{"/t/guide_a_small.webp", "/t/guide_b_small.webp"},
		},
		{ID: "x", Filename: "none.txt", AllImages: []string{"/t/ignored_small.webp"}},
	}

	images := CollectGallery(records)
	require.Len(t, images, 5)

	assert.Equal(t, "/t/book_page_0_medium.jpg", images[0].Src)
	assert.Equal(t, "/t/book_page_0_modal.jpg", images[0].ModalSrc)
	assert.Equal(t, domain.LineagePDFPage, images[0].Lineage)
	assert.Equal(t, 1, images[0].ImageIndex)
	assert.Equal(t, "Page 8", images[1].Label())

	assert.Equal(t, domain.LineageMarkdownImage, images[2].Lineage)
	assert.Equal(t, 5, images[2].ImageIndex)
	assert.Equal(t, "/t/notes_markdown_4_medium.webp", images[2].Src)

	assert.Equal(t, domain.LineageDocxImage, images[4].Lineage)
	assert.Equal(t, 2, images[4].ImageIndex)
	assert.Equal(t, "Image 2", images[4].Label())

	reachable := map[string]bool{}
	for _, rec := range records {
		for _, p := range rec.AllImages {
			reachable[p] = true
		}
	}
	for _, img := range images {
		assert.True(t, reachable[img.Original], img.Original)
	}
}

func TestModalSourceAndFallbackChain(t *testing.T) {
	assert.Equal(t, "/t/a_modal.webp", ModalSource("/t/a_small.webp"))
	assert.Equal(t, "/t/a_modal.jpg", ModalSource("/t/a_large.jpg"))
	assert.Equal(t, "/t/a.png", ModalSource("/t/a.png"))

	assert.Equal(t, []string{
		"/t/a_modal.webp",
		"/t/a_large.webp",
		"/t/a_medium.webp",
		"/t/a_small.webp",
	}, FallbackChain("/t/a_modal.webp"))

	_, ok := FallbackSource("/t/a_small.jpg")
	assert.False(t, ok)
}

func TestFormatStats(t *testing.T) {
	state := domain.PageState{Page: 2, PageSize: 10, TotalHits: 1234}
	assert.Equal(t, "Page 2 of 124 (1,234 results in 7ms)", FormatStats(state, 7))

	empty := domain.PageState{Page: 1, PageSize: 10}
	assert.Equal(t, "About 0 results (3ms)", FormatStats(empty, 3))
}
