package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for SearchBox.

The TUI shows suggested and recent searches, runs queries with live syntax
checking, streams AI summaries next to the results and opens documents.

Controls:
  ↑/k, ↓/j - Navigate results
  ←/h, →/l - Previous / next page
  Enter    - Search / Select
  Tab      - Focus the summary
  r        - Refresh the summary
  i        - Image gallery
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// startBackground runs the scheduler and config watcher for long-running
// front-ends. The returned func stops both.
func startBackground(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)

	if schedulerEnabled && scheduler != nil {
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
	}

	if watchConfig != nil {
		go func() {
			err := watchConfig(ctx, func() {
				logger.Info("configuration changed; restart to apply connection settings")
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Debug("config watch: %v", err)
			}
		}()
	}

	return func() {
		cancel()
		if schedulerEnabled && scheduler != nil {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}
	}
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	if searchService == nil {
		return errors.New("search service not configured")
	}

	stop := startBackground(cmd.Context())
	defer stop()

	if enableAutoSummary != nil {
		enableAutoSummary()
	}

	ports := &tui.Ports{
		Search:          searchService,
		Summary:         summaryService,
		History:         historyService,
		Recommendations: recommendationService,
		Viewer:          viewerService,
		ResultAction:    resultActionService,
		Settings:        settingsService,
		Subscribe:       subscribe,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if setPINPrompter != nil {
		pin := tui.NewPINPrompter()
		setPINPrompter(pin)
		app.WithPINPrompter(pin)
	}

	// Log lines would tear the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
