package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/search"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	jsonMIMEType = "application/json"

	ActiveGalaURI = "gala://active"
	SectionsURI   = "gala://sections"
)

type ActiveSnapshotReader interface {
	ActiveSnapshot(ctx context.Context) (*gala.Snapshot, error)
}

// GalaResources exposes the active gala and the searchable sections as
// readable MCP resources.
type GalaResources struct {
	snapshots ActiveSnapshotReader
}

func NewGalaResources(snapshots ActiveSnapshotReader) *GalaResources {
	return &GalaResources{snapshots: snapshots}
}

func (r *GalaResources) ActiveResource() mcp.Resource {
	return mcp.NewResource(
		ActiveGalaURI,
		"Active gala",
		mcp.WithResourceDescription("Full content of the gala shown on the public site"),
		mcp.WithMIMEType(jsonMIMEType),
	)
}

func (r *GalaResources) SectionsResource() mcp.Resource {
	return mcp.NewResource(
		SectionsURI,
		"Suggestion sections",
		mcp.WithResourceDescription("Section tags accepted by the suggest tool"),
		mcp.WithMIMEType(jsonMIMEType),
	)
}

func (r *GalaResources) ActiveReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := r.snapshots.ActiveSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("load active gala: %w", err)
		}
		return jsonContents(request, ActiveGalaURI, snap)
	}
}

func (r *GalaResources) SectionsReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(request, SectionsURI, search.Sections())
	}
}

func jsonContents(request mcp.ReadResourceRequest, uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}

	responseURI := uri
	if request.Params.URI != "" {
		responseURI = request.Params.URI
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      responseURI,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		},
	}, nil
}
