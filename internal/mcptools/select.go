package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"source-intel-be/pkg/synthesis"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// SelectTool handles the select_sources MCP tool.
type SelectTool struct {
	engine *synthesis.Engine
}

func NewSelectTool(engine *synthesis.Engine) *SelectTool {
	return &SelectTool{engine: engine}
}

func (t *SelectTool) Definition() mcp.Tool {
	return mcp.NewTool("select_sources",
		mcp.WithDescription(
			"Pick the smallest set of platforms whose combined quality reaches the target for this query. "+
				"Pass the returned session_id on follow-up queries to track context switches.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The research question"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to continue. Omit to start a new one."),
		),
		mcp.WithNumber("target_quality",
			mcp.Description("Desired synthesis quality in [0,1]. Defaults to the server setting."),
		),
		mcp.WithNumber("max_sources",
			mcp.Description("Upper bound on selected sources. Defaults to the server setting."),
		),
	)
}

func (t *SelectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	d, err := t.engine.SelectSources(ctx, synthesis.SelectRequest{
		Query:         req.GetString("query", ""),
		SessionID:     sessionID,
		TargetQuality: floatArg(req, "target_quality"),
		MaxSources:    intArg(req, "max_sources", 0),
	})
	if err != nil {
		var nv *synthesis.NoViableSourcesError
		if errors.As(err, &nv) {
			return mcp.NewToolResultError(fmt.Sprintf("no source could be scored: %v", nv)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("cannot select sources: %v", err)), nil
	}

	return mcp.NewToolResultText(formatDecision(d)), nil
}

func formatDecision(d synthesis.Decision) string {
	var sb strings.Builder
	sb.WriteString("## Source Selection\n\n")
	sb.WriteString(fmt.Sprintf("- **Session**: %s\n", d.SessionID))
	sb.WriteString(fmt.Sprintf("- **Context**: %s (confidence %.2f)\n", d.Context, d.Confidence))
	sb.WriteString(fmt.Sprintf("- **Sources**: %s\n", strings.Join(d.SelectedSources, ", ")))
	sb.WriteString(fmt.Sprintf("- **Synthesis quality**: %.3f (target %.2f, reached: %t)\n", d.SynthesisQuality, d.TargetQuality, d.TargetReached))
	if d.ContextSwitched && d.PreviousContext != nil {
		sb.WriteString(fmt.Sprintf("- **Context switch**: %s → %s (tension %.2f)\n", *d.PreviousContext, d.Context, d.TransitionTension))
	}

	sb.WriteString("\n### Scores\n\n")
	for _, id := range sortedKeys(d.PerSourceScores) {
		sb.WriteString(fmt.Sprintf("- %s: %.3f\n", id, d.PerSourceScores[id]))
	}
	if len(d.ExcludedSources) > 0 {
		sb.WriteString("\n### Excluded\n\n")
		for _, ex := range d.ExcludedSources {
			sb.WriteString(fmt.Sprintf("- %s: %s %s\n", ex.SourceID, ex.Field, ex.Reason))
		}
	}
	return sb.String()
}
