package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the index to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server for AI assistants.

Tools: search, validate_query, summarize, search_history, recommendations.
Resources: searchbox://history and searchbox://documents/{id}.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch. Vault documents stay locked in that mode because
there is no terminal to ask for the PIN. With --port it serves streamable
HTTP on the loopback interface; "searchbox serve --mcp" mounts the same
endpoint at /mcp of the web viewer instead.

Assistant configuration:
  {
    "mcpServers": {
      "searchbox": {"command": "searchbox", "args": ["mcp", "serve"]}
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface for --port")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// newMCPServer builds the MCP adapter over the configured services.
func newMCPServer() (*mcp.Server, error) {
	if searchService == nil {
		return nil, errors.New("search service not configured")
	}
	return mcp.NewServer(&mcp.Ports{
		Search:          searchService,
		Summary:         summaryService,
		History:         historyService,
		Recommendations: recommendationService,
		Viewer:          viewerService,
	})
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		// stdin carries JSON-RPC; a PIN prompt would corrupt the stream.
		if setPINPrompter != nil {
			setPINPrompter(nil)
		}
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
