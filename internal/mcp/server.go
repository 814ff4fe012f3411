package mcp

import (
	"github.com/Togather-Foundation/gala/internal/mcp/resources"
	"github.com/Togather-Foundation/gala/internal/mcp/tools"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with the gala content services. It lets
// assistants query the same suggestion engine the microsite uses.
type Server struct {
	mcp       *mcpserver.MCPServer
	snapshots tools.SnapshotReader
	tools     *tools.GalaTools
	resources *resources.GalaResources
}

// Config holds configuration for the MCP server.
type Config struct {
	Name           string
	Version        string
	MaxSuggestions int
}

// NewServer creates an MCP server backed by snapshots.
//
//	srv := mcp.NewServer(mcp.Config{Name: "Gala", Version: "1.0.0"}, galaService)
func NewServer(cfg Config, snapshots tools.SnapshotReader) *Server {
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("Read-only access to gala microsite content: type-ahead suggestions over categories, nominees, panels, sponsors and gallery"),
	)

	srv := &Server{
		mcp:       mcpServer,
		snapshots: snapshots,
		tools:     tools.NewGalaTools(snapshots, cfg.MaxSuggestions),
		resources: resources.NewGalaResources(snapshots),
	}
	srv.registerTools()
	srv.registerResources()
	return srv
}

// MCPServer returns the underlying MCP server for use with transports.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(s.tools.SuggestTool(), s.tools.SuggestHandler)
	s.mcp.AddTool(s.tools.GetGalaTool(), s.tools.GetGalaHandler)
}

func (s *Server) registerResources() {
	s.mcp.AddResource(s.resources.ActiveResource(), s.resources.ActiveReadHandler())
	s.mcp.AddResource(s.resources.SectionsResource(), s.resources.SectionsReadHandler())
}
