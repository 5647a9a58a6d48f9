// Package cli provides the cobra command tree for the searchbox binary.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// version is set at build time through -ldflags.
var version = "dev"

var (
	verbose      bool
	outputFormat string
)

// Services used by the commands. They are wired by main through SetServices.
var (
	searchService         driving.SearchService
	summaryService        driving.SummaryService
	cacheService          driving.CacheService
	historyService        driving.HistoryService
	recommendationService driving.RecommendationService
	viewerService         driving.ViewerService
	resultActionService   driving.ResultActionService
	settingsService       driving.SettingsService
	statusService         driving.StatusService
	scheduler             driving.Scheduler

	schedulerEnabled  bool
	enableAutoSummary func()
	subscribe         func(func(domain.Event)) func()
	setPINPrompter    func(driven.PINPrompter)
	watchConfig       func(ctx context.Context, onChange func()) error
	webAddr           string
	backendURL        string
)

// Services groups every driving port the CLI can use. Nil fields leave the
// matching commands reporting that the service is not configured.
type Services struct {
	Search          driving.SearchService
	Summary         driving.SummaryService
	Cache           driving.CacheService
	History         driving.HistoryService
	Recommendations driving.RecommendationService
	Viewer          driving.ViewerService
	ResultActions   driving.ResultActionService
	Settings        driving.SettingsService
	Status          driving.StatusService

	// Scheduler runs background cache cleanup and recommendation refresh
	// while a long-running front-end is open.
	Scheduler        driving.Scheduler
	SchedulerEnabled bool

	// EnableAutoSummary turns on summaries after every search. Interactive
	// front-ends call it; one-shot commands request summaries explicitly.
	EnableAutoSummary func()

	// Subscribe registers for core events.
	Subscribe func(func(domain.Event)) func()

	// SetPINPrompter replaces the vault PIN prompter, e.g. with the TUI modal.
	SetPINPrompter func(driven.PINPrompter)

	// WatchConfig reloads settings when the config file changes.
	WatchConfig func(ctx context.Context, onChange func()) error

	// WebAddr is the default listen address for `searchbox serve`.
	WebAddr string

	// BackendURL is where the web viewer proxies ZIM images from.
	BackendURL string
}

// SetServices wires the command tree to the core services.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	searchService = s.Search
	summaryService = s.Summary
	cacheService = s.Cache
	historyService = s.History
	recommendationService = s.Recommendations
	viewerService = s.Viewer
	resultActionService = s.ResultActions
	settingsService = s.Settings
	statusService = s.Status
	scheduler = s.Scheduler
	schedulerEnabled = s.SchedulerEnabled
	enableAutoSummary = s.EnableAutoSummary
	subscribe = s.Subscribe
	setPINPrompter = s.SetPINPrompter
	watchConfig = s.WatchConfig
	webAddr = s.WebAddr
	backendURL = s.BackendURL
}

// SetVersion overrides the version reported by `searchbox version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "searchbox",
	Short: "Search your local document index from the terminal",
	Long: `SearchBox searches the documents indexed by a SearchBox backend.

Queries accept type operators such as "kubernetes::pdf", exclusions with
"::!zip" and boolean combinations with && and ||. Results can be summarised
by the backend's local LLM, and summaries are cached on disk.

Run "searchbox tui" for the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputText, "output format: text, json or yaml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// structuredOutput reports whether --output asks for a machine format.
func structuredOutput() (bool, error) {
	switch outputFormat {
	case outputText, "":
		return false, nil
	case outputJSON, outputYAML:
		return true, nil
	default:
		return false, fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
	}
}

// writeStructured encodes v in the --output format.
func writeStructured(w io.Writer, v any) error {
	switch outputFormat {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// emit writes v in the structured format when one was requested and
// otherwise calls text. It returns the first error.
func emit(cmd *cobra.Command, v any, text func() error) error {
	structured, err := structuredOutput()
	if err != nil {
		return err
	}
	if structured {
		return writeStructured(cmd.OutOrStdout(), v)
	}
	return text()
}
