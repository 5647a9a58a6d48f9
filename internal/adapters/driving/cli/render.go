package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

var cliStyles = styles.DefaultStyles()

func highlight(s string) string {
	return cliStyles.Marked(s)
}

func badge(label, color string) string {
	return cliStyles.Badge("["+label+"]", color)
}

func writeCards(w io.Writer, cards []domain.ResultCard, offset int) {
	for i := range cards {
		c := &cards[i]
		lock := ""
		if c.Locked {
			lock = " " + cliStyles.Warning.Render("(locked)")
		}
		fmt.Fprintf(w, "  [%d] %s %s%s\n", offset+i+1, badge(c.TypeLabel, c.TypeColor), highlight(c.Title), lock)

		meta := []string{c.SourceLabel, c.SizeLabel}
		if c.ImageCount > 0 {
			meta = append(meta, fmt.Sprintf("%d images", c.ImageCount))
		}
		fmt.Fprintf(w, "      %s\n", cliStyles.Muted.Render(strings.Join(meta, " • ")))
		if c.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", highlight(c.Snippet))
		}
		fmt.Fprintf(w, "      %s\n\n", cliStyles.Muted.Render(c.URL))
	}
}

func pageBarText(bar *domain.PageBar) string {
	return cliStyles.PageBar(bar)
}

func writeDiagnostics(w io.Writer, v domain.Validation) {
	fmt.Fprintln(w, cliStyles.Error.Render(v.Message))
	for _, d := range v.Diagnostics {
		fmt.Fprintf(w, "  - %s\n", d.Message)
		if d.Suggestion != "" {
			fmt.Fprintf(w, "    %s\n", cliStyles.Muted.Render(d.Suggestion))
		}
	}
}
