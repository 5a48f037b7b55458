package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/llm-sidecar/internal/journal"
	"github.com/ziadkadry99/llm-sidecar/internal/llm"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Completer is the part of the LLM facade the tools use.
type Completer interface {
	ChatCompletion(ctx context.Context, req llm.Request) (*llm.Response, error)
	ChatCompletionStream(ctx context.Context, req llm.Request) (llm.ChatStream, error)
	TestConnection(ctx context.Context) bool
}

// Server wraps an MCP server that exposes the LLM facade as tools.
type Server struct {
	llm     Completer
	journal *journal.Store
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server. The journal is optional; without
// it the recent_commands tool is not registered.
func NewServer(c Completer, j *journal.Store) *Server {
	s := &Server{
		llm:     c,
		journal: j,
	}

	s.mcp = server.NewMCPServer(
		"llm-sidecar",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(chatCompletionTool, s.handleChatCompletion)
	s.mcp.AddTool(testConnectionTool, s.handleTestConnection)
	if s.journal != nil {
		s.mcp.AddTool(recentCommandsTool, s.handleRecentCommands)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
