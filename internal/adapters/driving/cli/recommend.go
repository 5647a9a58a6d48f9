package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

var recommendRefresh bool

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show suggested searches",
	Long: `Shows searches suggested by the backend. Suggestions are cached for five
minutes; --refresh fetches new ones.`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().BoolVarP(&recommendRefresh, "refresh", "r", false, "fetch new suggestions")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}

	var (
		recs []domain.Recommendation
		err  error
	)
	if recommendRefresh {
		recs, err = recommendationService.Refresh(cmd.Context())
	} else {
		recs, err = recommendationService.Recommendations(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to get recommendations: %w", err)
	}

	return emit(cmd, recs, func() error {
		if len(recs) == 0 {
			cmd.Println("No suggestions right now.")
			return nil
		}
		cmd.Println("Suggested searches:")
		for _, r := range recs {
			cmd.Printf("  %s  %s\n", cliStyles.Title.Render(r.Query), cliStyles.Muted.Render(r.Category))
			if r.Reason != "" {
				cmd.Printf("      %s\n", r.Reason)
			}
		}
		return nil
	})
}
