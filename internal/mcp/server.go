package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf-form-export/internal/config"
	"github.com/a3tai/pdf-form-export/internal/form"
	"github.com/a3tai/pdf-form-export/internal/log"
	"github.com/a3tai/pdf-form-export/internal/pdf/security"
	"github.com/a3tai/pdf-form-export/internal/pdf/wrapper"
	"github.com/a3tai/pdf-form-export/internal/scraper"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	library   wrapper.PDFLibrary
	validator *security.PathValidator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, library wrapper.PDFLibrary) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if library == nil {
		return nil, fmt.Errorf("library cannot be nil")
	}

	validator, err := security.NewPathValidator(cfg.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		library:   library,
		validator: validator,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	exportTool := mcp.NewTool(
		"pdf_export_forms",
		mcp.WithDescription("Collect the AcroForm field values of every PDF in a directory into one table "+
			"and write it next to the PDFs"),
		mcp.WithString("directory",
			mcp.Description("Directory to export, inside the configured directory (uses default if empty)"),
		),
	)
	s.mcpServer.AddTool(exportTool, s.handleExportForms)

	fieldsTool := mcp.NewTool(
		"pdf_form_fields",
		mcp.WithDescription("List the AcroForm field names and coerced values of one PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the configured directory"),
		),
	)
	s.mcpServer.AddTool(fieldsTool, s.handleFormFields)
}

func (s *Server) handleExportForms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := request.GetString("directory", "")
	if dir == "" {
		dir = "."
	}
	dir, err := s.validator.ResolveDirectory(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts, err := scraper.BuildOptions(s.config.Format, s.config.OutputName(), s.config.Align, s.config.SeedIndex)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := scraper.New(dir, s.library, opts).Run(ctx)
	if err != nil {
		log.Warnf("export of %s failed: %v", dir, err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatExportResult(result)), nil
}

func (s *Server) handleFormFields(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path, err = s.validator.ResolveFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields, err := s.library.ReadFields(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFields(path, fields)), nil
}

func formatExportResult(r *scraper.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exported %d rows to %s\n", r.Rows, r.ExportPath)
	fmt.Fprintf(&b, "Columns (%d): %s\n", len(r.Columns), strings.Join(r.Columns, ", "))
	fmt.Fprintf(&b, "Files (%d):\n", len(r.Files))
	for i, name := range r.Files {
		fmt.Fprintf(&b, "  %d. %s\n", i, name)
	}
	return b.String()
}

func formatFields(path string, fields []wrapper.RawField) string {
	literals := form.DefaultLiterals()

	var b strings.Builder
	fmt.Fprintf(&b, "Form fields in %s: %d\n", filepath.Base(path), len(fields))
	for i, f := range fields {
		name, err := form.FieldName(f)
		if err != nil {
			name = "<" + err.Error() + ">"
		}
		value := form.Decode(f.Value, literals)
		fmt.Fprintf(&b, "  %d. %s = %s\n", i, name, describeValue(value))
	}
	return b.String()
}

func describeValue(v form.Value) string {
	switch v.Kind {
	case form.KindText:
		return fmt.Sprintf("%q", v.Text)
	case form.KindInteger:
		return fmt.Sprintf("%d", v.Int)
	default:
		return "(empty)"
	}
}

// Run serves MCP over standard I/O until stdin closes.
func (s *Server) Run(_ context.Context) error {
	log.Debugf("starting MCP stdio server for %s", s.validator.Root())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
