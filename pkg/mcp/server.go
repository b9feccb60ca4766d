// Package mcp exposes the converter as Model Context Protocol tools.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/tsxify/pkg/batch"
	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/mcplog"
)

// ServerName is reported to clients during initialization.
const ServerName = "tsxify"

// Options configures a Server.
type Options struct {
	// Defaults apply to every call; tool arguments override them.
	Defaults config.ConversionConfig
	// Version is reported to clients.
	Version string
	// BatchLimit bounds parallel conversions in convert_batch (0 = CPU based).
	BatchLimit int
	// CallLog records every tool call when non-nil.
	CallLog *mcplog.Logger
	Logger  *slog.Logger
}

// Server serves conversion tools over MCP.
type Server struct {
	mcpServer *server.MCPServer
	conv      *converter.Converter
	orch      *batch.Orchestrator
	defaults  config.ConversionConfig
	callLog   *mcplog.Logger
	logger    *slog.Logger
}

// NewServer creates a server backed by conv.
func NewServer(conv *converter.Converter, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		conv:     conv,
		orch:     batch.NewOrchestrator(conv, opts.BatchLimit, logger),
		defaults: opts.Defaults,
		callLog:  opts.CallLog,
		logger:   logger,
	}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.callLog != nil {
		serverOpts = append(serverOpts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer(ServerName, opts.Version, serverOpts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: convertCodeTool(), Handler: s.handleConvertCode},
		server.ServerTool{Tool: convertBatchTool(), Handler: s.handleConvertBatch},
		server.ServerTool{Tool: inspectCodeTool(), Handler: s.handleInspectCode},
	)

	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio", "tools", len(ToolNames()))
	return server.ServeStdio(s.mcpServer)
}
