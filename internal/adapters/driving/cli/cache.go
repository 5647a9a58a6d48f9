package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached AI summaries",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached summaries",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [query]",
	Short: "Remove cached summaries",
	Long: `Without a query every cached summary is removed. With a query, the search
is run and only the summary for its first page of results is removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired and unreadable summaries",
	Args:  cobra.NoArgs,
	RunE:  runCacheCleanup,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	entries, err := cacheService.Entries(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}

	return emit(cmd, entries, func() error {
		if len(entries) == 0 {
			cmd.Println("No cached summaries.")
			return nil
		}
		cmd.Printf("%d cached summaries:\n", len(entries))
		for _, e := range entries {
			cmd.Printf("  %s  %s\n", e.Query, cliStyles.Muted.Render(humanize.Time(time.UnixMilli(e.Timestamp))))
			cmd.Printf("      %s\n", cliStyles.Muted.Render(e.Key))
		}
		return nil
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	ctx := cmd.Context()

	if len(args) == 0 {
		n, err := cacheService.ClearAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		cmd.Printf("Removed %d cached summaries.\n", n)
		return nil
	}

	if searchService == nil {
		return errors.New("search service not configured")
	}
	page, err := searchService.Search(ctx, args[0], 1, true)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if err := cacheService.Clear(ctx, page.Query, page.Records); err != nil {
		return fmt.Errorf("failed to clear summary: %w", err)
	}
	cmd.Printf("Removed cached summary for %q.\n", page.Query)
	return nil
}

func runCacheCleanup(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	n, err := cacheService.Cleanup(cmd.Context())
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	cmd.Printf("Removed %d expired summaries.\n", n)
	return nil
}
