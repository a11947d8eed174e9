package mcpserver

import (
	"context"

	"github.com/incdep/incdep/internal/analysis"
	"github.com/incdep/incdep/pkg/config"
	"github.com/incdep/incdep/pkg/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"
)

// AnalyzeInput is the shared input for both tools.
type AnalyzeInput struct {
	Path       string   `json:"path,omitempty" jsonschema:"Project root to analyze. Defaults to the current directory."`
	SearchDirs []string `json:"search_dirs,omitempty" jsonschema:"Additional include search directories, in resolution order."`
}

// PlanInput adds planning options.
type PlanInput struct {
	AnalyzeInput
	MinConfidence float64 `json:"min_confidence,omitempty" jsonschema:"Minimum confidence for auto-removal (0.0-1.0). Default 0.8."`
}

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func runAnalysis(ctx context.Context, input AnalyzeInput, minConfidence float64) (*models.Analysis, error) {
	cfg := config.LoadOrDefault(getPath(input))
	if len(input.SearchDirs) > 0 {
		cfg.Search.Dirs = input.SearchDirs
	}
	if minConfidence > 0 {
		cfg.Plan.MinConfidence = minConfidence
	}
	svc := analysis.New(cfg, nil)
	return svc.Analyze(ctx, getPath(input))
}

func toolResult(data any) (*mcp.CallToolResult, any, error) {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(out)},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func handleAnalyzeIncludes(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	result, err := runAnalysis(ctx, input, 0)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result)
}

func handleRemovalPlan(ctx context.Context, req *mcp.CallToolRequest, input PlanInput) (*mcp.CallToolResult, any, error) {
	result, err := runAnalysis(ctx, input.AnalyzeInput, input.MinConfidence)
	if err != nil {
		return toolError(err.Error())
	}
	out := struct {
		Plan    models.RemovalPlan `json:"plan" toon:"plan"`
		Summary models.Summary     `json:"summary" toon:"summary"`
	}{result.Plan, result.Summary}
	return toolResult(out)
}
