package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// buildInfo is the structured form of `searchbox version`.
type buildInfo struct {
	Version string `json:"version" yaml:"version"`
	Go      string `json:"go" yaml:"go"`
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := buildInfo{Version: version, Go: runtime.Version(), Backend: backendURL}
		return emit(cmd, info, func() error {
			cmd.Printf("searchbox %s (%s)\n", info.Version, info.Go)
			if info.Backend != "" {
				cmd.Printf("backend   %s\n", info.Backend)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
