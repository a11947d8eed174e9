// Package mcpserver exposes include analysis over the Model Context
// Protocol, for editor agents that want structured results.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with the analysis tools registered.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "incdep",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_includes",
		Description: "Analyze the C/C++ include graph of a project. Classifies every " +
			"#include directive as necessary, redundant or unresolved, with a " +
			"confidence score and the identifiers justifying it.",
	}, handleAnalyzeIncludes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "removal_plan",
		Description: "Compute a safe removal plan for redundant #include directives. " +
			"Each removal is validated against identifier resolution in every " +
			"including file; conflicting candidates are reverted.",
	}, handleRemovalPlan)
}
