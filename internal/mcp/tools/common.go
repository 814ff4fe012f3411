package tools

import (
	"context"
	"encoding/json"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/mark3labs/mcp-go/mcp"
)

// SnapshotReader is the read side of the gala service.
type SnapshotReader interface {
	Snapshot(ctx context.Context, galaID string) (*gala.Snapshot, error)
	ActiveSnapshot(ctx context.Context) (*gala.Snapshot, error)
}

// decodeArguments copies the loosely typed tool arguments into dst.
func decodeArguments(request mcp.CallToolRequest, dst any) error {
	if request.Params.Arguments == nil {
		return nil
	}
	data, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// toolResultJSON converts a payload to an MCP tool result with JSON content.
// Returns a tool error result if the conversion fails.
func toolResultJSON(payload any) (*mcp.CallToolResult, error) {
	resultJSON, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to build response", err), nil
	}
	return resultJSON, nil
}
