package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeCLI   = "cli"
	ModeStdio = "stdio"

	// Export formats
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	// Field alignment
	AlignPosition = "position"
	AlignName     = "name"

	// PDF backends
	BackendPDFCPU     = "pdfcpu"
	BackendLedongthuc = "ledongthuc"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultSeedIndex   = 1

	// EnvPrefix is prepended to every flag name to form its environment
	// variable, e.g. PDF_FORM_EXPORT_DIR.
	EnvPrefix = "PDF_FORM_EXPORT"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is given.
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the form exporter
type Config struct {
	Mode string // "cli" or "stdio"

	// Export configuration
	PDFDirectory string
	ExportName   string // file name inside PDFDirectory
	Format       string
	SeedIndex    int
	Align        string
	Backend      string
	MaxFileSize  int64 // Maximum PDF file size in bytes

	// Application configuration
	ConfigFile string
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeCLI,
		PDFDirectory: currentDir,
		Format:       FormatCSV,
		SeedIndex:    DefaultSeedIndex,
		Align:        AlignPosition,
		Backend:      BackendPDFCPU,
		MaxFileSize:  DefaultMaxFileSize,
		Version:      "1.0.0",
		ServerName:   "pdf-form-export",
		LogLevel:     DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
// Values come from, in order of precedence: flags, PDF_FORM_EXPORT_*
// environment variables, the --config file, defaults.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	if err := readConfigFile(); err != nil {
		return nil, err
	}

	populateConfigFromViper(cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// flagNames lists every flag bound to viper.
var flagNames = []string{
	"mode", "dir", "out", "format", "seed", "align", "backend",
	"loglevel", "maxfilesize", "config",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("out", cfg.ExportName)
	viper.SetDefault("format", cfg.Format)
	viper.SetDefault("seed", cfg.SeedIndex)
	viper.SetDefault("align", cfg.Align)
	viper.SetDefault("backend", cfg.Backend)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("config", cfg.ConfigFile)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' exports once and exits, 'stdio' serves MCP over standard I/O")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing the PDF forms")
	pflag.String("out", cfg.ExportName, "Export file name inside --dir (default export.<format>)")
	pflag.String("format", cfg.Format, "Export format (csv, xlsx)")
	pflag.Int("seed", cfg.SeedIndex, "Index of the listed PDF whose fields become the columns")
	pflag.String("align", cfg.Align, "Field alignment (position, name)")
	pflag.String("backend", cfg.Backend, "PDF library (pdfcpu, ledongthuc)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("config", cfg.ConfigFile, "Configuration file (yaml, json, toml)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range flagNames {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Form Export - collects AcroForm field values from a directory of PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # export ./export.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/forms             # export /path/to/forms/export.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --format=xlsx --align=name       # workbook, columns matched by name\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/forms # MCP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, name := range flagNames {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", EnvPrefix, strings.ToUpper(name))
		}
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// readConfigFile loads the --config file, if any, beneath flags and env.
func readConfigFile() error {
	path := viper.GetString("config")
	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.ExportName = viper.GetString("out")
	cfg.Format = viper.GetString("format")
	cfg.SeedIndex = viper.GetInt("seed")
	cfg.Align = viper.GetString("align")
	cfg.Backend = viper.GetString("backend")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.ConfigFile = viper.GetString("config")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeCLI && c.Mode != ModeStdio {
		return errors.New("mode must be either 'cli' or 'stdio'")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}
	info, err := os.Stat(c.PDFDirectory)
	if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("PDF directory %s is not a directory", c.PDFDirectory)
	}

	if c.Format != FormatCSV && c.Format != FormatXLSX {
		return fmt.Errorf("invalid format: %s (must be one of: csv, xlsx)", c.Format)
	}

	if c.ExportName != "" && filepath.Base(c.ExportName) != c.ExportName {
		return fmt.Errorf("export name must be a plain file name: %s", c.ExportName)
	}
	if strings.HasSuffix(c.ExportName, ".pdf") {
		return fmt.Errorf("export name must not end in .pdf, it would be read as input: %s", c.ExportName)
	}

	if c.SeedIndex < 0 {
		return errors.New("seed index cannot be negative")
	}

	if c.Align != AlignPosition && c.Align != AlignName {
		return fmt.Errorf("invalid alignment: %s (must be one of: position, name)", c.Align)
	}

	if c.Backend != BackendPDFCPU && c.Backend != BackendLedongthuc {
		return fmt.Errorf("invalid backend: %s (must be one of: pdfcpu, ledongthuc)", c.Backend)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// OutputName returns the export file name, derived from the format when
// none is configured.
func (c *Config) OutputName() string {
	if c.ExportName != "" {
		return c.ExportName
	}
	return "export." + c.Format
}

// ExportPath returns where the export file is written.
func (c *Config) ExportPath() string {
	return filepath.Join(c.PDFDirectory, c.OutputName())
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsStdioMode returns true if the MCP stdio server should run
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDFDirectory: %s, Export: %s, Format: %s, SeedIndex: %d, "+
		"Align: %s, Backend: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.PDFDirectory, c.OutputName(), c.Format, c.SeedIndex,
		c.Align, c.Backend, c.LogLevel, c.MaxFileSize)
}
