// Package mcp exposes the progression service as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/service"
	"github.com/hawthornlabs/journey/internal/services/progression/storage/sqlite"
)

const (
	serverName = "Journey MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the progression MCP server.
type Server struct {
	mcpServer *mcp.Server
	store     *sqlite.Store
}

// New creates an MCP server bound to an existing progression service. The
// server owns no storage and Close is a no-op in this mode.
func New(svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("progression service is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, ProgressGetTool(), ProgressGetHandler(svc))
	mcp.AddTool(mcpServer, ChapterCompleteTool(), ChapterCompleteHandler(svc))
	return &Server{mcpServer: mcpServer}, nil
}

// NewWithStore creates an MCP server that owns its own sqlite store.
func NewWithStore(dbPath string) (*Server, error) {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open progression sqlite store: %w", err)
	}
	server, err := New(service.New(domain.DefaultCatalog(), store))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	server.store = store
	return server, nil
}

// Close releases the store held by the server, if any.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return err
	}
	s.store = nil
	return nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Run creates a store-owning server and serves it over stdio.
func Run(ctx context.Context, dbPath string) error {
	server, err := NewWithStore(dbPath)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log.Printf("mcp server serving tools=progress_get,chapter_complete")
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close progression store: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close progression store: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
