package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"whiteboard/internal/board"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes board editing as MCP tools. Every tool goes through the
// same Board operations as pointer input, so edits land in local history
// and are emitted to the other clients.
type Server struct {
	mcp   *server.MCPServer
	board *board.Board
}

// New creates an MCP server editing b.
func New(b *board.Board) *Server {
	s := &Server{board: b}
	s.mcp = server.NewMCPServer(
		"whiteboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerShapeTools()
	s.registerBoardTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout. Logs go to stderr.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

func number(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

func optionalNumber(args map[string]any, key string, def float64) float64 {
	if v, err := number(args, key); err == nil {
		return v
	}
	return def
}

func str(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func optionalString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
