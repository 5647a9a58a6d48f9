package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

var (
	searchPage  int
	searchForce bool

	imagesPage int

	exploreType   string
	exploreSort   string
	exploreOffset int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Searches the document index.

Type operators narrow the results:
  kubernetes::pdf          PDFs matching "kubernetes"
  report::!zip             exclude documents from ZIP archives
  notes::md||txt           markdown or text files
  a::pdf && b::docx        either side, with its own type filter
  cats::image              switch to the image gallery

Queries with syntax problems are rejected unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var imagesCmd = &cobra.Command{
	Use:   "images [query]",
	Short: "Search the image gallery",
	Long:  `Searches documents that carry images and lists the gallery thumbnails.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImages,
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse indexed documents",
	Long: `Lists indexed documents without a query.

Types: all, pdf, docx, txt, md, images, zim, zip, vault, torrent
Sorts: recent, name, size`,
	Args: cobra.NoArgs,
	RunE: runExplore,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "result page")
	searchCmd.Flags().BoolVarP(&searchForce, "force", "f", false, "search even when the syntax check fails")
	imagesCmd.Flags().IntVarP(&imagesPage, "page", "p", 1, "gallery page")
	exploreCmd.Flags().StringVarP(&exploreType, "type", "t", string(domain.ExploreAll), "type filter")
	exploreCmd.Flags().StringVarP(&exploreSort, "sort", "s", string(domain.SortRecent), "sort order")
	exploreCmd.Flags().IntVar(&exploreOffset, "offset", 0, "number of documents to skip")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(exploreCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	page, err := searchService.Search(cmd.Context(), args[0], searchPage, searchForce)
	if err != nil {
		var validationErr *domain.ValidationError
		var redirect *domain.RedirectError
		switch {
		case errors.As(err, &validationErr):
			writeDiagnostics(cmd.ErrOrStderr(), searchService.Validate(args[0]))
			return fmt.Errorf("%w (use --force to search anyway)", err)
		case errors.As(err, &redirect):
			cmd.PrintErrf("Image search: %s\n", redirect.Location)
			return showImages(cmd, args[0], searchPage)
		case errors.Is(err, domain.ErrEmptyQuery):
			return errors.New("please enter a search term")
		default:
			return fmt.Errorf("search failed: %w", err)
		}
	}

	return emit(cmd, page, func() error {
		writeResultPage(cmd.OutOrStdout(), page)
		return nil
	})
}

func writeResultPage(w io.Writer, page *domain.ResultPage) {
	if page.IsEmpty() {
		fmt.Fprintf(w, "No results found for %q.\n", page.Query)
		return
	}

	fmt.Fprintf(w, "%s\n", cliStyles.Title.Render(fmt.Sprintf("Results for %q", page.Query)))
	fmt.Fprintf(w, "%s\n\n", cliStyles.Muted.Render(page.Stats))
	writeCards(w, page.Cards, page.State.Offset())

	if n := len(page.Gallery); n > 0 {
		fmt.Fprintf(w, "%s images in these results. Run: searchbox images %q\n", humanize.Comma(int64(n)), page.Query)
	}
	if bar := pageBarText(page.Pagination); bar != "" {
		fmt.Fprintf(w, "\n%s\n", bar)
	}
}

func runImages(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	return showImages(cmd, args[0], imagesPage)
}

func showImages(cmd *cobra.Command, query string, pageNum int) error {
	page, err := searchService.SearchImages(cmd.Context(), query, pageNum)
	if err != nil {
		return fmt.Errorf("image search failed: %w", err)
	}

	return emit(cmd, page, func() error {
		w := cmd.OutOrStdout()
		if len(page.Images) == 0 {
			fmt.Fprintf(w, "No images found for %q.\n", page.Query)
			return nil
		}
		fmt.Fprintf(w, "%s\n\n", cliStyles.Title.Render(fmt.Sprintf("Images for %q (%s documents)",
			page.Query, humanize.Comma(int64(page.State.TotalHits)))))
		for i, img := range page.Images {
			fmt.Fprintf(w, "  [%d] %s, %s\n", i+1, img.DocName, img.Label())
			fmt.Fprintf(w, "      %s\n", cliStyles.Muted.Render(img.ModalSrc))
		}
		if bar := pageBarText(page.Pagination); bar != "" {
			fmt.Fprintf(w, "\n%s\n", bar)
		}
		return nil
	})
}

func runExplore(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	sort := domain.SortOrder(exploreSort)
	if !sort.IsValid() {
		return fmt.Errorf("unknown sort %q (want recent, name or size)", exploreSort)
	}

	page, err := searchService.Explore(cmd.Context(), domain.ExploreFilter(exploreType), sort, exploreOffset)
	if err != nil {
		return fmt.Errorf("explore failed: %w", err)
	}

	return emit(cmd, page, func() error {
		w := cmd.OutOrStdout()
		if len(page.Cards) == 0 {
			fmt.Fprintln(w, "No documents found.")
			return nil
		}
		fmt.Fprintf(w, "%s\n\n", cliStyles.Title.Render(fmt.Sprintf("%s documents (%s, sorted by %s)",
			humanize.Comma(int64(page.Total)), page.Filter, page.Sort)))
		writeCards(w, page.Cards, page.Offset)
		if !page.AllLoaded {
			fmt.Fprintf(w, "More: searchbox explore --type %s --sort %s --offset %d\n",
				page.Filter, page.Sort, page.Offset+len(page.Cards))
		}
		return nil
	})
}
