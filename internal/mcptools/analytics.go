package mcptools

import (
	"context"
	"fmt"
	"strings"

	"source-intel-be/pkg/synthesis"

	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyticsTool handles the get_session_analytics MCP tool.
type AnalyticsTool struct {
	engine *synthesis.Engine
}

func NewAnalyticsTool(engine *synthesis.Engine) *AnalyticsTool {
	return &AnalyticsTool{engine: engine}
}

func (t *AnalyticsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_session_analytics",
		mcp.WithDescription("Summarize a research session: query count, context switches, quality trend and best context."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session returned by select_sources"),
		),
	)
}

func (t *AnalyticsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := t.engine.SessionAnalytics(ctx, req.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot load session: %v", err)), nil
	}

	best := "none"
	if a.HasBestContext {
		best = a.BestContext.String()
	}

	var sb strings.Builder
	sb.WriteString("## Session Analytics\n\n")
	sb.WriteString(fmt.Sprintf("- **Session**: %s\n", a.SessionID))
	sb.WriteString(fmt.Sprintf("- **Queries**: %d\n", a.QueryCount))
	sb.WriteString(fmt.Sprintf("- **Context switches**: %d\n", a.ContextSwitches))
	sb.WriteString(fmt.Sprintf("- **Quality trend**: %s\n", a.QualityTrend))
	sb.WriteString(fmt.Sprintf("- **Average quality**: %.3f\n", a.AverageQuality))
	sb.WriteString(fmt.Sprintf("- **Best context**: %s\n", best))
	return mcp.NewToolResultText(sb.String()), nil
}
