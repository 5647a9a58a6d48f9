package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/web"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

const defaultWebAddr = "127.0.0.1:5080"

var (
	serveAddr string
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local web viewer",
	Long: `Serve result pages, documents and ZIM articles on a local HTTP port.

The viewer backs the "open in browser" actions. ZIM article images are
proxied from the SearchBox backend. Background cache cleanup runs while the
server is up. With --mcp the MCP endpoint is served at /mcp on the same
address.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, else "+defaultWebAddr+")")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve the MCP endpoint at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func listenAddr() string {
	switch {
	case serveAddr != "":
		return serveAddr
	case webAddr != "":
		return webAddr
	default:
		return defaultWebAddr
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	cfg := web.Config{BackendURL: backendURL}
	if serveMCP {
		mcpServer, err := newMCPServer()
		if err != nil {
			return err
		}
		cfg.MCP = mcpServer.Handler()
	}

	server, err := web.NewServer(&web.Ports{
		Search:  searchService,
		Summary: summaryService,
		Viewer:  viewerService,
	}, cfg)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stop := startBackground(ctx)
	defer stop()

	addr := listenAddr()
	fmt.Fprintf(cmd.OutOrStdout(), "SearchBox viewer listening on http://%s\n", addr)
	logger.Info("web: serving on %s", addr)

	return server.Run(ctx, addr)
}
