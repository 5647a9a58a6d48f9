package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

var (
	summaryRefresh bool
	summaryStream  bool
	summaryForce   bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary [query]",
	Short: "Summarise the results of a search with the local LLM",
	Long: `Runs the search and asks the backend's LLM to summarise the first page
of results. Finished summaries are cached for an hour; --refresh bypasses
the cache and replaces the entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().BoolVarP(&summaryRefresh, "refresh", "r", false, "ignore the cached summary")
	summaryCmd.Flags().BoolVar(&summaryStream, "stream", true, "print the summary as it is generated")
	summaryCmd.Flags().BoolVarP(&summaryForce, "force", "f", false, "search even when the syntax check fails")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if searchService == nil || summaryService == nil {
		return errors.New("summary service not configured")
	}
	ctx := cmd.Context()

	page, err := searchService.Search(ctx, args[0], 1, summaryForce)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if page.IsEmpty() {
		cmd.Printf("No results found for %q.\n", page.Query)
		return nil
	}
	if !summaryService.Available(ctx) {
		return fmt.Errorf("%w: the backend LLM is disabled or not connected", domain.ErrLLMUnavailable)
	}

	structured, err := structuredOutput()
	if err != nil {
		return err
	}

	var onUpdate func(domain.SummaryView)
	printer := &streamPrinter{w: cmd.OutOrStdout()}
	if summaryStream && !structured {
		onUpdate = printer.update
	} else {
		cmd.PrintErrln("Generating summary...")
	}

	view, err := summaryService.Generate(ctx, page.Query, page.Records, summaryRefresh, onUpdate)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}
	if view.Phase == domain.SummaryFailed {
		return fmt.Errorf("%w: %s", domain.ErrSummaryFailed, view.Error)
	}

	return emit(cmd, view, func() error {
		writeSummary(cmd.OutOrStdout(), view, printer.printed)
		return nil
	})
}

// streamPrinter writes only the text appended since the last update. When
// cleaning rewrites earlier text the update is skipped and the final view
// is printed in full instead.
type streamPrinter struct {
	w       io.Writer
	printed string
}

func (p *streamPrinter) update(v domain.SummaryView) {
	if v.Phase != domain.SummaryStreaming || !strings.HasPrefix(v.Markdown, p.printed) {
		return
	}
	fmt.Fprint(p.w, v.Markdown[len(p.printed):])
	p.printed = v.Markdown
}

func writeSummary(w io.Writer, view domain.SummaryView, streamed string) {
	switch {
	case streamed == "":
		fmt.Fprintf(w, "%s\n\n%s\n", cliStyles.Title.Render("AI Summary"), view.Markdown)
	case view.Markdown != streamed:
		fmt.Fprintf(w, "\n\n%s\n\n%s\n", cliStyles.Title.Render("AI Summary"), view.Markdown)
	default:
		fmt.Fprintln(w)
	}

	if len(view.TopSources) > 0 {
		fmt.Fprintf(w, "\n%s\n", cliStyles.Subtitle.Render("Sources"))
		for _, src := range view.TopSources {
			fmt.Fprintf(w, "  [%d] %s (%s, cited %d×)\n", src.ID, src.Title, src.FileType, src.Count)
		}
	}

	var meta []string
	if view.Summary != nil {
		if view.Summary.ModelUsed != "" {
			meta = append(meta, view.Summary.ModelUsed)
		}
		if view.Summary.GenerationTime > 0 {
			meta = append(meta, fmt.Sprintf("%.1fs", view.Summary.GenerationTime))
		}
		meta = append(meta, "confidence "+string(view.Summary.Confidence))
	}
	if view.FromCache {
		meta = append(meta, "cached")
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "\n%s\n", cliStyles.Muted.Render(strings.Join(meta, " • ")))
	}
}
