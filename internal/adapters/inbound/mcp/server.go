package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/sdkweave/internal/application"
)

// NewSDKWeaveMCPServer creates a new MCP server with all sdkweave tools and
// resources registered. projectPath is the project used when a call does
// not name one.
func NewSDKWeaveMCPServer(projectPath string, engine *application.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"sdkweave",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, engine)
	registerResources(s, projectPath, engine)

	return s
}
