package server

// ToolServer defines the interface for the MCP server that handles
// reminder tool calls from MCP clients.
type ToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on its transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
