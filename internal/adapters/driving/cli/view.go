package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/services"
)

var (
	viewPrint bool
	viewQuery string
	viewPage  int
)

var viewCmd = &cobra.Command{
	Use:   "view [doc-id]",
	Short: "Open a document in the viewer",
	Long: `Opens the document in the browser through the local viewer server
("searchbox serve"). With --print the document text is written to stdout
instead. Vault documents ask for the PIN.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolVar(&viewPrint, "print", false, "print the document instead of opening it")
	viewCmd.Flags().StringVarP(&viewQuery, "query", "q", "", "search to return to from the viewer")
	viewCmd.Flags().IntVarP(&viewPage, "page", "p", 0, "result page to return to")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	id := args[0]
	if !viewPrint {
		if resultActionService == nil {
			return errors.New("result action service not configured")
		}
		location := domain.ViewURL(id, viewQuery, viewPage)
		if err := resultActionService.OpenURL(cmd.Context(), location); err != nil {
			return fmt.Errorf("failed to open viewer: %w", err)
		}
		cmd.Printf("Opened %s\n", location)
		return nil
	}

	if viewerService == nil {
		return errors.New("viewer service not configured")
	}
	doc, kind, err := viewerService.Open(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return fmt.Errorf("document %s is in the vault and the PIN was not accepted: %w", id, err)
		}
		return fmt.Errorf("failed to open document: %w", err)
	}

	body := doc.Content
	if kind == domain.ViewerZim {
		article, err := viewerService.ZimArticle(cmd.Context(), doc)
		if err != nil {
			return fmt.Errorf("failed to load article: %w", err)
		}
		body = services.ArticleText(article.HTML)
	}

	return emit(cmd, map[string]any{"document": doc, "viewer": kind, "text": body}, func() error {
		cmd.Println(cliStyles.Title.Render(doc.Filename))
		cmd.Println(cliStyles.Muted.Render(fmt.Sprintf("%s • %s • %s viewer", doc.Source.Label(), doc.Extension(), kind)))
		cmd.Println()
		cmd.Println(body)
		return nil
	})
}
