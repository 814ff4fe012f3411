package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/search"
	"github.com/mark3labs/mcp-go/mcp"
)

// GalaTools exposes the suggestion engine and snapshots to MCP clients.
type GalaTools struct {
	snapshots      SnapshotReader
	maxSuggestions int
}

func NewGalaTools(snapshots SnapshotReader, maxSuggestions int) *GalaTools {
	return &GalaTools{snapshots: snapshots, maxSuggestions: maxSuggestions}
}

func sectionNames() []string {
	out := make([]string, 0, len(search.Sections()))
	for _, s := range search.Sections() {
		out = append(out, string(s))
	}
	return out
}

// SuggestTool returns the MCP tool definition for type-ahead suggestions.
func (t *GalaTools) SuggestTool() mcp.Tool {
	return mcp.Tool{
		Name:        "suggest",
		Description: "Suggest gala content matching a partial query within one section. Matching is a case-insensitive substring test.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text typed so far",
				},
				"section": map[string]interface{}{
					"type":        "string",
					"description": "Section to search; unknown sections search category names",
					"enum":        sectionNames(),
				},
				"gala_id": map[string]interface{}{
					"type":        "string",
					"description": "Gala to search (default: the active gala)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// SuggestHandler handles the suggest tool call.
func (t *GalaTools) SuggestHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.snapshots == nil {
		return mcp.NewToolResultError("gala tools not configured"), nil
	}

	var args struct {
		Query   string `json:"query"`
		Section string `json:"section"`
		GalaID  string `json:"gala_id"`
	}
	if err := decodeArguments(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	snap, result := t.load(ctx, args.GalaID)
	if result != nil {
		return result, nil
	}

	return toolResultJSON(map[string]any{
		"query":       args.Query,
		"section":     args.Section,
		"suggestions": search.FilterN(args.Query, args.Section, snap, t.maxSuggestions),
	})
}

// GetGalaTool returns the MCP tool definition for reading a full snapshot.
func (t *GalaTools) GetGalaTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_gala",
		Description: "Get the full content of a gala: categories with nominees, panels with speakers, sponsors and gallery.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gala_id": map[string]interface{}{
					"type":        "string",
					"description": "Gala to read (default: the active gala)",
				},
			},
		},
	}
}

// GetGalaHandler handles the get_gala tool call.
func (t *GalaTools) GetGalaHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.snapshots == nil {
		return mcp.NewToolResultError("gala tools not configured"), nil
	}

	var args struct {
		GalaID string `json:"gala_id"`
	}
	if err := decodeArguments(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	snap, result := t.load(ctx, args.GalaID)
	if result != nil {
		return result, nil
	}
	return toolResultJSON(snap)
}

// load returns the requested snapshot, or a tool error result.
func (t *GalaTools) load(ctx context.Context, galaID string) (*gala.Snapshot, *mcp.CallToolResult) {
	var (
		snap *gala.Snapshot
		err  error
	)
	if galaID = strings.TrimSpace(galaID); galaID == "" {
		snap, err = t.snapshots.ActiveSnapshot(ctx)
	} else {
		snap, err = t.snapshots.Snapshot(ctx, galaID)
	}

	switch {
	case err == nil:
		return snap, nil
	case errors.Is(err, gala.ErrNoActiveGala):
		return nil, mcp.NewToolResultError("no active gala")
	case errors.Is(err, gala.ErrNotFound):
		return nil, mcp.NewToolResultError("gala not found")
	default:
		return nil, mcp.NewToolResultErrorFromErr("failed to load gala", err)
	}
}
