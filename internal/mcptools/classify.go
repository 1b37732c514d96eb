package mcptools

import (
	"context"
	"fmt"

	"source-intel-be/pkg/synthesis"

	"github.com/mark3labs/mcp-go/mcp"
)

// ClassifyTool handles the classify_query MCP tool.
type ClassifyTool struct {
	engine *synthesis.Engine
}

func NewClassifyTool(engine *synthesis.Engine) *ClassifyTool {
	return &ClassifyTool{engine: engine}
}

func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("classify_query",
		mcp.WithDescription(
			"Classify a research query into one of nine intelligence contexts "+
				"(pain_point_discovery, market_validation, technical_trends, ...) with a confidence in [0.3, 1].",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The research question to classify"),
		),
	)
}

func (t *ClassifyTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")

	c, err := t.engine.ClassifyQuery(query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot classify query: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"## Query Context\n\n- **Context**: %s\n- **Confidence**: %.2f\n- **Keyword matches**: %d\n",
		c.Context, c.Confidence, c.Matches,
	)), nil
}
