package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and manage recent searches",
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every recent search",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyEnhanceCmd = &cobra.Command{
	Use:   "enhance [on|off]",
	Short: "Show or set whether history informs recommendations",
	Long: `With enhancement on, recent searches are sent with recommendation
requests so suggestions follow what you have been looking for.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runHistoryEnhance,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyEnhanceCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	historyService.Load(cmd.Context())
	entries := historyService.List()

	return emit(cmd, map[string]any{"history": entries}, func() error {
		if len(entries) == 0 {
			cmd.Println("No recent searches.")
			return nil
		}
		cmd.Println("Recent searches:")
		for i, q := range entries {
			cmd.Printf("  %d. %s\n", i+1, q)
		}
		return nil
	})
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	if err := historyService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("Search history cleared.")
	return nil
}

func runHistoryEnhance(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	historyService.Load(cmd.Context())
	if len(args) == 1 {
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "yes":
			enabled = true
		case "off", "false", "no":
		default:
			return fmt.Errorf("invalid value %q (want on or off)", args[0])
		}
		if err := historyService.SetEnhancementEnabled(cmd.Context(), enabled); err != nil {
			return fmt.Errorf("failed to update enhancement setting: %w", err)
		}
	}

	state := "off"
	if historyService.EnhancementEnabled() {
		state = "on"
	}
	return emit(cmd, map[string]bool{"enabled": state == "on"}, func() error {
		cmd.Printf("History enhancement: %s\n", state)
		return nil
	})
}
