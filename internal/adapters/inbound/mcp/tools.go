package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/openkraft/sdkweave/internal/application"
	"github.com/openkraft/sdkweave/internal/domain"
)

// registerTools registers all sdkweave MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, engine *application.Engine) {
	// 1. sdkweave_plan
	s.AddTool(
		mcplib.NewTool("sdkweave_plan",
			append([]mcplib.ToolOption{
				mcplib.WithDescription("Propose the source changes that integrate the SDK parts into the project. Nothing is written."),
			}, requestOptions()...)...,
		),
		handlePlan(projectPath, engine),
	)

	// 2. sdkweave_apply
	s.AddTool(
		mcplib.NewTool("sdkweave_apply",
			append(append([]mcplib.ToolOption{
				mcplib.WithDescription("Apply the selected changes of a fresh plan. Each touched file is written once."),
			}, requestOptions()...),
				mcplib.WithArray("ids", mcplib.Description("Change ids to apply (default: every change with a patch)"), mcplib.WithStringItems()),
				mcplib.WithBoolean("dry_run", mcplib.Description("Report what would be applied without writing")),
			)...,
		),
		handleApply(projectPath, engine),
	)

	// 3. sdkweave_verify
	s.AddTool(
		mcplib.NewTool("sdkweave_verify",
			append(append([]mcplib.ToolOption{
				mcplib.WithDescription("Apply the selected changes, then re-plan and re-apply until none remain or the retry budget is spent"),
			}, requestOptions()...),
				mcplib.WithArray("ids", mcplib.Description("Change ids to apply and verify (default: every change with a patch)"), mcplib.WithStringItems()),
				mcplib.WithBoolean("dry_run", mcplib.Description("Report the selection without writing")),
			)...,
		),
		handleVerify(projectPath, engine),
	)

	// 4. sdkweave_scan
	s.AddTool(
		mcplib.NewTool("sdkweave_scan",
			mcplib.WithDescription("Detect the app platform and Android layout of the project"),
			mcplib.WithString("path", mcplib.Description("Project root (default: the server's project)")),
			mcplib.WithString("platform", mcplib.Description("Declared app platform: react-native, flutter or android")),
		),
		handleScan(projectPath, engine),
	)
}

func requestOptions() []mcplib.ToolOption {
	return []mcplib.ToolOption{
		mcplib.WithString("path", mcplib.Description("Project root (default: the server's project)")),
		mcplib.WithString("platform", mcplib.Description("App platform: react-native, flutter or android (default: detected)")),
		mcplib.WithArray("parts", mcplib.Description("Parts to integrate: base, push, px (base is always included)"), mcplib.WithStringItems()),
		mcplib.WithObject("inputs", mcplib.Description("Flat input bag, e.g. smartechAppId, deeplinkScheme, hanselAppId")),
	}
}

// planResponse carries a plan with the input warnings for its selection.
type planResponse struct {
	Plan     *domain.IntegrationPlan `json:"plan"`
	Warnings []domain.InputIssue     `json:"warnings"`
}

type applyResponse struct {
	Results  []domain.ApplyResult `json:"results"`
	Warnings []domain.InputIssue  `json:"warnings"`
}

func handlePlan(projectPath string, engine *application.Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		opts, err := parseOptions(request, projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		plan, err := engine.Planner.PlanIntegration(opts)
		if err != nil {
			return errorResult(fmt.Sprintf("plan failed: %v", err)), nil
		}
		return jsonResult(planResponse{Plan: plan, Warnings: warnings(engine, opts)})
	}
}

func handleApply(projectPath string, engine *application.Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		opts, err := parseOptions(request, projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		_, results, err := engine.Apply(opts, ids(request))
		if err != nil {
			return errorResult(fmt.Sprintf("apply failed: %v", err)), nil
		}
		return jsonResult(applyResponse{Results: results, Warnings: warnings(engine, opts)})
	}
}

func handleVerify(projectPath string, engine *application.Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		opts, err := parseOptions(request, projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		report, err := engine.Verifier.ApplyAndVerify(opts, ids(request))
		if err != nil {
			return errorResult(fmt.Sprintf("verify failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleScan(projectPath string, engine *application.Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		path := cast.ToString(args["path"])
		if path == "" {
			path = projectPath
		}
		platform, err := parsePlatform(cast.ToString(args["platform"]))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		scan, err := engine.Planner.ScanProject(path, platform)
		if err != nil {
			return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
		}
		return jsonResult(scan)
	}
}

// parseOptions decodes the shared request arguments.
func parseOptions(request mcplib.CallToolRequest, projectPath string) (domain.IntegrationOptions, error) {
	args := request.GetArguments()
	opts := domain.IntegrationOptions{
		RootPath: cast.ToString(args["path"]),
		DryRun:   cast.ToBool(args["dry_run"]),
	}
	if opts.RootPath == "" {
		opts.RootPath = projectPath
	}

	var err error
	if opts.AppPlatform, err = parsePlatform(cast.ToString(args["platform"])); err != nil {
		return opts, err
	}
	for _, s := range stringList(args["parts"]) {
		p, err := domain.ParsePart(s)
		if err != nil {
			return opts, err
		}
		opts.Parts = append(opts.Parts, p)
	}
	if raw, ok := args["inputs"]; ok && raw != nil {
		bag, err := cast.ToStringMapE(raw)
		if err != nil {
			return opts, fmt.Errorf("inputs must be an object: %w", err)
		}
		if opts.Inputs, err = domain.InputsFromMap(bag); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func parsePlatform(s string) (domain.AppPlatform, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParseAppPlatform(s)
}

func ids(request mcplib.CallToolRequest) []string {
	return stringList(request.GetArguments()["ids"])
}

// stringList accepts a JSON array or a comma-separated string.
func stringList(v any) []string {
	if s, ok := v.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return cast.ToStringSlice(v)
}

// warnings resolves opts against the project config and lists the inputs
// the selection is missing. Resolution errors surface from the engine.
func warnings(engine *application.Engine, opts domain.IntegrationOptions) []domain.InputIssue {
	resolved, _, err := engine.Planner.Resolve(opts)
	if err != nil {
		return []domain.InputIssue{}
	}
	issues := resolved.Inputs.Validate(resolved.AppPlatform, resolved.NormalizedParts())
	if issues == nil {
		return []domain.InputIssue{}
	}
	return issues
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
