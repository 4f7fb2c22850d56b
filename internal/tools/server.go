package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"apsconnect/internal/mapping"
	"apsconnect/internal/oauth"
	"apsconnect/internal/revit"
	"apsconnect/pkg/logging"
)

// MCPServer exposes token, mapping and Routes API operations as MCP tools
// over stdio transport.
type MCPServer struct {
	flow      *oauth.Orchestrator
	mappings  *mapping.Store
	revit     *revit.Client
	mcpServer *server.MCPServer
}

// NewMCPServer creates the MCP server and registers all tools.
func NewMCPServer(version string, flow *oauth.Orchestrator, mappings *mapping.Store, revitClient *revit.Client) *MCPServer {
	mcpServer := server.NewMCPServer(
		"apsconnect",
		version,
		server.WithToolCapabilities(false),
	)

	s := &MCPServer{
		flow:      flow,
		mappings:  mappings,
		revit:     revitClient,
		mcpServer: mcpServer,
	}
	s.registerTools()

	return s
}

// Start serves the MCP protocol over stdin/stdout and blocks until the
// client closes the connection.
func (s *MCPServer) Start(ctx context.Context) error {
	logging.Info("MCPServer", "serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

func (s *MCPServer) registerTools() {
	// Token lifecycle
	s.mcpServer.AddTool(mcp.NewTool("aps_get_token",
		mcp.WithDescription("Obtain an APS access token, running the browser authorization flow if no valid cached token exists"),
	), s.handleGetToken)

	s.mcpServer.AddTool(mcp.NewTool("aps_check_token",
		mcp.WithDescription("Report the cached APS token's validity without triggering an authorization flow"),
	), s.handleCheckToken)

	s.mcpServer.AddTool(mcp.NewTool("aps_clear_token",
		mcp.WithDescription("Remove the cached APS token"),
	), s.handleClearToken)

	// Origin/target mapping store
	s.mcpServer.AddTool(mcp.NewTool("mapping_add",
		mcp.WithDescription("Add or update a mapping from an origin element GUID to a target element ID"),
		mcp.WithString("origin_guid", mcp.Required(), mcp.Description("Origin element GUID")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Target element ID")),
		mcp.WithString("element_type", mcp.Description("Element type, e.g. Beam or Column")),
	), s.handleMappingAdd)

	s.mcpServer.AddTool(mcp.NewTool("mapping_get",
		mcp.WithDescription("Resolve an origin element GUID to its target element ID"),
		mcp.WithString("origin_guid", mcp.Required(), mcp.Description("Origin element GUID")),
	), s.handleMappingGet)

	s.mcpServer.AddTool(mcp.NewTool("mapping_reverse",
		mcp.WithDescription("Resolve a target element ID back to its origin element GUID"),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Target element ID")),
	), s.handleMappingReverse)

	s.mcpServer.AddTool(mcp.NewTool("mapping_remove",
		mcp.WithDescription("Remove the mapping for an origin element GUID"),
		mcp.WithString("origin_guid", mcp.Required(), mcp.Description("Origin element GUID")),
	), s.handleMappingRemove)

	s.mcpServer.AddTool(mcp.NewTool("mapping_stats",
		mcp.WithDescription("Summarize the mapping store: total count and per-element-type breakdown"),
	), s.handleMappingStats)

	// Routes API proxy
	s.mcpServer.AddTool(mcp.NewTool("revit_status",
		mcp.WithDescription("Check whether the modeling application's Routes API is active and responding"),
	), s.handleRevitStatus)

	s.mcpServer.AddTool(mcp.NewTool("revit_model_info",
		mcp.WithDescription("Get information about the currently open model"),
	), s.handleRevitModelInfo)

	s.mcpServer.AddTool(mcp.NewTool("revit_list_levels",
		mcp.WithDescription("List the levels defined in the currently open model"),
	), s.handleRevitListLevels)
}
