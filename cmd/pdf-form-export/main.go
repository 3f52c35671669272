package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/pdf-form-export/internal/config"
	"github.com/a3tai/pdf-form-export/internal/log"
	"github.com/a3tai/pdf-form-export/internal/mcp"
	"github.com/a3tai/pdf-form-export/internal/pdf/wrapper"
	"github.com/a3tai/pdf-form-export/internal/scraper"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLibrary creates the configured PDF backend
func newLibrary(cfg *config.Config) (wrapper.PDFLibrary, error) {
	libType, err := wrapper.ParseLibraryType(cfg.Backend)
	if err != nil {
		return nil, err
	}

	factory := wrapper.NewPDFLibraryFactoryWithConfig(wrapper.FactoryConfig{
		PreferredLibrary: libType,
		MaxFileSize:      cfg.MaxFileSize,
		DebugMode:        cfg.IsDebug(),
	})
	return factory.Create(libType)
}

// runExport performs a single export of the configured directory
func runExport(ctx context.Context, cfg *config.Config, lib wrapper.PDFLibrary) (*scraper.Result, error) {
	opts, err := scraper.BuildOptions(cfg.Format, cfg.OutputName(), cfg.Align, cfg.SeedIndex)
	if err != nil {
		return nil, err
	}
	return scraper.New(cfg.PDFDirectory, lib, opts).Run(ctx)
}

// runStdioMode serves MCP until the parent process closes stdin
func runStdioMode(ctx context.Context, cfg *config.Config, lib wrapper.PDFLibrary) error {
	server, err := mcp.NewServer(cfg, lib)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

func run(ctx context.Context, cfg *config.Config) error {
	lib, err := newLibrary(cfg)
	if err != nil {
		return err
	}

	if cfg.IsStdioMode() {
		return runStdioMode(ctx, cfg, lib)
	}

	result, err := runExport(ctx, cfg, lib)
	if err != nil {
		return err
	}
	fmt.Println(result.ExportPath)
	return nil
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.SetLevel(cfg.LogLevel)

	if version != "dev" {
		cfg.Version = version
	}
	log.Debugf("starting with configuration: %s", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Form Export\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
