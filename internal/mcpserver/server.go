package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all Pressgate tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("pressgate", "1.0.0")
	client := NewPressgateClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolCheckContentAccess, h.HandleCheckContentAccess)
	s.AddTool(ToolGrantTemporaryAccess, h.HandleGrantTemporaryAccess)
	s.AddTool(ToolCreateSubscription, h.HandleCreateSubscription)
	s.AddTool(ToolGetUserSubscription, h.HandleGetUserSubscription)
	s.AddTool(ToolCancelSubscription, h.HandleCancelSubscription)
	s.AddTool(ToolListSubscriptionPlans, h.HandleListSubscriptionPlans)
	s.AddTool(ToolValidateAccessToken, h.HandleValidateAccessToken)
	s.AddTool(ToolAssessContentValue, h.HandleAssessContentValue)
	s.AddTool(ToolGetAccessStatistics, h.HandleGetAccessStatistics)

	return s
}
