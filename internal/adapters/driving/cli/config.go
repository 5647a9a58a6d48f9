package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `Settings are stored in ~/.searchbox/config.toml. The backend and
Meilisearch locations can also be set through SEARCHBOX_BACKEND_URL,
SEARCHBOX_MEILI_URL, SEARCHBOX_MEILI_KEY and SEARCHBOX_CSRF_TOKEN, either in
the environment or in a .env file; those take precedence over the file.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Revert one setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the settings are usable",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	return emit(cmd, values, func() error {
		width := 0
		for _, v := range values {
			width = max(width, len(v.Key))
		}
		for _, v := range values {
			source := ""
			if v.Source != "config" {
				source = cliStyles.Muted.Render(" (" + v.Source + ")")
			}
			cmd.Printf("%-*s  %s%s\n", width, v.Key, v.Value, source)
		}
		return nil
	})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	for _, v := range values {
		if v.Key == args[0] {
			return emit(cmd, v, func() error {
				cmd.Println(v.Value)
				return nil
			})
		}
	}
	return fmt.Errorf("unknown setting %q", args[0])
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return err
	}
	cmd.Printf("%s reverted to default\n", args[0])
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cmd.Println("Settings are valid.")
	return nil
}
