package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/sdkweave/internal/application"
)

const scanURI = "sdkweave://scan"

// registerResources registers all sdkweave MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string, engine *application.Engine) {
	s.AddResource(
		mcplib.NewResource(
			scanURI,
			"Project Scan",
			mcplib.WithResourceDescription("Detected platform, Android layout and notes for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleScanResource(projectPath, engine),
	)
}

func handleScanResource(projectPath string, engine *application.Engine) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		scan, err := engine.Planner.ScanProject(projectPath, "")
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		data, err := json.MarshalIndent(scan, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling scan: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      scanURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
