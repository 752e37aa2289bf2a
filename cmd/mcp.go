package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/wellflow/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server speaks over stdio and exposes tools to read the day's plan and
progress, add, toggle and delete tasks, read session history and set the
daily goal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return errors.New("the MCP server is disabled; set mcp.enabled = true to use it")
		}

		stderr := cmd.ErrOrStderr()
		fmt.Fprintln(stderr, "Starting MCP server on stdio")
		fmt.Fprintln(stderr, "Press Ctrl+C to stop")

		ctx, stop := setupSignalHandler(cmd.Context())
		defer stop()

		server := mcp.NewServer(app.state, Version)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
