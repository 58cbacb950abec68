package cli

import (
	mcpadapter "github.com/openkraft/sdkweave/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the sdkweave MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start sdkweave MCP server (stdio)",
		Long:  "Start the sdkweave MCP server using stdio transport. This lets AI coding assistants plan, apply and verify the SDK integration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}
			s := mcpadapter.NewSDKWeaveMCPServer(projectPath, engine)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}
