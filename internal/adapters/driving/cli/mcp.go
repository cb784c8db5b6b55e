package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/adapters/driving/mcp"
	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes a search tool over the stored records, an ask tool that
answers from them, and the chat history as resources.

By default the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead.

Examples:
  # Stdio mode (default)
  paddock mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  paddock mcp serve --port 8080

Desktop client configuration:
  {
    "mcpServers": {
      "paddock": {
        "command": "/path/to/paddock",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if err := need(config.NeedStore | config.NeedEmbedding); err != nil {
		return err
	}
	if retrievalService != nil {
		if _, err := retrievalService.Load(cmd.Context(), false); err != nil {
			return fmt.Errorf("loading index: %w", err)
		}
	}

	ports := &mcp.Ports{
		Retrieval: retrievalService,
	}
	// The ask tool is only offered an LLM when one is configured.
	if need(config.NeedLLM) == nil {
		ports.Chat = chatService
	}

	server, err := mcp.NewServer(ports, mcp.WithVersion(version), mcp.WithLogger(logger.Named("mcp")))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
