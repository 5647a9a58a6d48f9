package driven

// MarkdownRenderer converts markdown to HTML.
type MarkdownRenderer interface {
	// Render returns the HTML for src.
	Render(src string) (string, error)
}
