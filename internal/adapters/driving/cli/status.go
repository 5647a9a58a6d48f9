package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend, index, LLM and vault status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}
	st := statusService.Status(cmd.Context())

	return emit(cmd, st, func() error {
		cmd.Printf("Backend:     %s\n", st.Backend)
		cmd.Printf("Meilisearch: %s\n", meiliLine(st.Meilisearch))
		cmd.Printf("LLM:         %s\n", llmLine(st.LLM))
		cmd.Printf("Vault:       %s\n", vaultLine(st.Vault))
		return nil
	})
}

func failed(msg string) string {
	return cliStyles.Error.Render("unreachable (" + msg + ")")
}

func meiliLine(p domain.CheckResult[domain.MeilisearchStatus]) string {
	if !p.OK() {
		return failed(p.Error)
	}
	if !p.Value.Running {
		return cliStyles.Warning.Render("stopped")
	}
	line := cliStyles.Success.Render("running")
	if p.Value.Version != "" {
		line += " v" + p.Value.Version
	}
	return line + fmt.Sprintf(", %s documents", humanize.Comma(int64(p.Value.DocumentCount)))
}

func llmLine(p domain.CheckResult[domain.LLMStatus]) string {
	switch {
	case !p.OK():
		return failed(p.Error)
	case !p.Value.Enabled:
		return cliStyles.Muted.Render("disabled")
	case !p.Value.Connected:
		return cliStyles.Warning.Render("enabled, not connected")
	default:
		return cliStyles.Success.Render("connected")
	}
}

func vaultLine(p domain.CheckResult[domain.VaultStatus]) string {
	if !p.OK() {
		return failed(p.Error)
	}
	if p.Value.PINSet {
		return cliStyles.Success.Render("PIN configured")
	}
	return cliStyles.Muted.Render("no PIN set")
}
