// ABOUTME: MCP server setup for the focus store.
// ABOUTME: Wraps the MCP server with storage Repository and analytics access.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/nowfocus/internal/analytics"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	tracker   *analytics.Tracker
	now       func() time.Time
}

// NewServer creates a new MCP server with the given storage. tracker may be nil.
func NewServer(repo storage.Repository, tracker *analytics.Tracker) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "nowfocus",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		tracker:   tracker,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
