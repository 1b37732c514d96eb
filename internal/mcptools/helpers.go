// Package mcptools exposes the synthesis engine as MCP tools so assistants can
// pick research sources the same way the HTTP API does.
//
// Each tool is a struct holding its dependencies with Definition() returning the
// schema and Handle() serving calls. Engine errors become tool errors, never
// protocol errors.
package mcptools

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument (JSON numbers arrive as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// floatArg returns nil when the argument is absent so engine defaults apply.
func floatArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
