package mcptools

import (
	"source-intel-be/pkg/synthesis"

	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName = "source-intel"
	Version    = "0.1.0"
)

// NewServer registers every synthesis tool on a fresh MCP server.
func NewServer(engine *synthesis.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	classifyTool := NewClassifyTool(engine)
	s.AddTool(classifyTool.Definition(), classifyTool.Handle)

	selectTool := NewSelectTool(engine)
	s.AddTool(selectTool.Definition(), selectTool.Handle)

	analyticsTool := NewAnalyticsTool(engine)
	s.AddTool(analyticsTool.Definition(), analyticsTool.Handle)

	return s
}
