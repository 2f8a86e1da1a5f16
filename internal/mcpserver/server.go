// Package mcpserver exposes the clinic resource catalog as MCP tools:
// template generation, record validation and import parsing. None of the
// tools talk to the clinic API.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/record"
)

const (
	serverName    = "clinicadmin-tools"
	serverVersion = "1.0.0"
)

// Server owns the MCP tool registry. It is a local tool host for stdio
// clients.
type Server struct {
	locales   []record.Locale
	stripHTML bool

	mcpServer *server.MCPServer
}

// New creates a server validating localized fields for locales. When
// stripHTML is set, parse-import removes markup from imported text.
func New(locales []record.Locale, stripHTML bool) *Server {
	if len(locales) == 0 {
		locales = record.DefaultLocales
	}
	s := &Server{
		locales:   locales,
		stripHTML: stripHTML,
	}
	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	logger.Debug("Serving MCP tools on stdio")
	return server.ServeStdio(s.mcpServer)
}
