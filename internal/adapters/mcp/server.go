// Package mcpadapter exposes scheme search and question answering as MCP
// tools over stdio, so assistants and IDE agents can call them directly.
package mcpadapter

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

const (
	ServerName    = "panchayat-sahayika"
	ServerVersion = "1.0.0"
)

type Server struct {
	mcp    *server.MCPServer
	search ports.SchemeSearcher
	ask    ports.AskService
	logger *slog.Logger
}

func NewServer(search ports.SchemeSearcher, ask ports.AskService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		search: search,
		ask:    ask,
		logger: logger,
	}
	s.mcp.AddTool(searchSchemesTool(), s.handleSearchSchemes)
	s.mcp.AddTool(askTool(), s.handleAsk)
	return s
}

// Serve blocks on stdio until the client disconnects. Stdout carries
// protocol frames, so logging must go elsewhere.
func (s *Server) Serve(_ context.Context) error {
	return server.ServeStdio(s.mcp)
}
