// Package mcp exposes Genkit tools over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/mcp"
	"github.com/rs/zerolog"
)

const defaultVersion = "1.0.0"

// Server serves a fixed set of Genkit tools over stdio.
type Server struct {
	name    string
	version string
	tools   []ai.Tool
	server  *mcp.GenkitMCPServer
}

// NewServer creates an MCP server exposing tools.
//
// Genkit exposes every tool defined on g; tools is the list the caller
// defined and is used for logging and introspection. An empty version
// defaults to 1.0.0.
func NewServer(g *genkit.Genkit, name, version string, tools []ai.Tool) *Server {
	if version == "" {
		version = defaultVersion
	}

	return &Server{
		name:    name,
		version: version,
		tools:   tools,
		server: mcp.NewMCPServer(g, mcp.MCPServerOptions{
			Name:    name,
			Version: version,
		}),
	}
}

// ToolNames returns the names of the exposed tools in registration order.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for _, tool := range s.tools {
		names = append(names, tool.Name())
	}
	return names
}

// ServeStdio serves MCP requests on stdin/stdout until the client disconnects.
// Cancellation is reported as a clean shutdown.
func (s *Server) ServeStdio(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	logger.Info().
		Str("server", s.name).
		Str("version", s.version).
		Strs("tools", s.ToolNames()).
		Msgf("Starting %s v%s", s.name, s.version)
	logger.Info().Msg("MCP Server is ready. Waiting for client connections via stdio...")

	if err := s.server.ServeStdio(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info().Msg("Server shutdown complete.")
	return nil
}
