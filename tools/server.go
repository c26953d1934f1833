package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// ServerName is the implementation name reported during initialization.
	ServerName = "currency-exchange-service"
	// ServerVersion is the implementation version reported during initialization.
	ServerVersion = "1.0.0"
)

// NewServer returns an MCP server exposing the exchange tool. The server is
// shared by every session; each transport connection gets its own session.
func NewServer(e *Exchange) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	server.AddTool(e.Tool(), e.Handle)
	return server
}
