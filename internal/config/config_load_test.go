package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	for _, name := range flagNames {
		os.Unsetenv(EnvPrefix + "_" + strings.ToUpper(name))
	}
}

// prepare isolates a LoadFromFlags call and restores global state afterwards.
func prepare(t *testing.T, args ...string) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	})

	setArgs(append([]string{"pdf-form-export"}, args...))
	resetFlags()
	clearEnvVars()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	dir := t.TempDir()
	prepare(t, "--dir="+dir)

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeCLI {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeCLI)
	}
	if cfg.Format != FormatCSV {
		t.Errorf("LoadFromFlags() Format = %v, want %v", cfg.Format, FormatCSV)
	}
	if cfg.SeedIndex != 1 {
		t.Errorf("LoadFromFlags() SeedIndex = %v, want %v", cfg.SeedIndex, 1)
	}
	if cfg.Align != AlignPosition {
		t.Errorf("LoadFromFlags() Align = %v, want %v", cfg.Align, AlignPosition)
	}
	if cfg.Backend != BackendPDFCPU {
		t.Errorf("LoadFromFlags() Backend = %v, want %v", cfg.Backend, BackendPDFCPU)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 100*1024*1024)
	}
	if got, want := cfg.ExportPath(), filepath.Join(dir, "export.csv"); got != want {
		t.Errorf("LoadFromFlags() ExportPath() = %v, want %v", got, want)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantMode    string
		wantFormat  string
		wantSeed    int
		wantAlign   string
		wantBackend string
		wantExport  string
	}{
		{
			name:        "stdio mode",
			args:        []string{"--mode=stdio"},
			wantMode:    "stdio",
			wantFormat:  "csv",
			wantSeed:    1,
			wantAlign:   "position",
			wantBackend: "pdfcpu",
			wantExport:  "export.csv",
		},
		{
			name:        "xlsx format",
			args:        []string{"--format=xlsx"},
			wantMode:    "cli",
			wantFormat:  "xlsx",
			wantSeed:    1,
			wantAlign:   "position",
			wantBackend: "pdfcpu",
			wantExport:  "export.xlsx",
		},
		{
			name:        "seed, align and backend",
			args:        []string{"--seed=0", "--align=name", "--backend=ledongthuc"},
			wantMode:    "cli",
			wantFormat:  "csv",
			wantSeed:    0,
			wantAlign:   "name",
			wantBackend: "ledongthuc",
			wantExport:  "export.csv",
		},
		{
			name:        "custom export name",
			args:        []string{"--out=forms.csv"},
			wantMode:    "cli",
			wantFormat:  "csv",
			wantSeed:    1,
			wantAlign:   "position",
			wantBackend: "pdfcpu",
			wantExport:  "forms.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prepare(t, append(tt.args, "--dir="+t.TempDir())...)

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.Mode != tt.wantMode {
				t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, tt.wantMode)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("LoadFromFlags() Format = %v, want %v", cfg.Format, tt.wantFormat)
			}
			if cfg.SeedIndex != tt.wantSeed {
				t.Errorf("LoadFromFlags() SeedIndex = %v, want %v", cfg.SeedIndex, tt.wantSeed)
			}
			if cfg.Align != tt.wantAlign {
				t.Errorf("LoadFromFlags() Align = %v, want %v", cfg.Align, tt.wantAlign)
			}
			if cfg.Backend != tt.wantBackend {
				t.Errorf("LoadFromFlags() Backend = %v, want %v", cfg.Backend, tt.wantBackend)
			}
			if cfg.OutputName() != tt.wantExport {
				t.Errorf("LoadFromFlags() OutputName() = %v, want %v", cfg.OutputName(), tt.wantExport)
			}
		})
	}
}

func TestLoadFromFlags_RelativeDirectory(t *testing.T) {
	prepare(t, "--dir=.")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}
	if !filepath.IsAbs(cfg.PDFDirectory) {
		t.Errorf("LoadFromFlags() PDFDirectory = %v, want absolute path", cfg.PDFDirectory)
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	prepare(t)
	dir := t.TempDir()

	t.Setenv("PDF_FORM_EXPORT_DIR", dir)
	t.Setenv("PDF_FORM_EXPORT_FORMAT", "xlsx")
	t.Setenv("PDF_FORM_EXPORT_SEED", "0")
	t.Setenv("PDF_FORM_EXPORT_LOGLEVEL", "warn")
	t.Setenv("PDF_FORM_EXPORT_MAXFILESIZE", "200000000")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.PDFDirectory != dir {
		t.Errorf("LoadFromFlags() PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
	}
	if cfg.Format != "xlsx" {
		t.Errorf("LoadFromFlags() Format = %v, want %v", cfg.Format, "xlsx")
	}
	if cfg.SeedIndex != 0 {
		t.Errorf("LoadFromFlags() SeedIndex = %v, want %v", cfg.SeedIndex, 0)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MaxFileSize != 200000000 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 200000000)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	prepare(t, "--format=csv", "--align=position", "--dir="+t.TempDir())

	t.Setenv("PDF_FORM_EXPORT_FORMAT", "xlsx")
	t.Setenv("PDF_FORM_EXPORT_ALIGN", "name")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Format != "csv" {
		t.Errorf("LoadFromFlags() Format = %v, want %v (should override env)", cfg.Format, "csv")
	}
	if cfg.Align != "position" {
		t.Errorf("LoadFromFlags() Align = %v, want %v (should override env)", cfg.Align, "position")
	}
}

func TestLoadFromFlags_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(t.TempDir(), "export.yaml")
	content := "dir: " + dir + "\nformat: xlsx\nbackend: ledongthuc\nseed: 0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	prepare(t, "--config="+path, "--seed=2")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.PDFDirectory != dir {
		t.Errorf("LoadFromFlags() PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
	}
	if cfg.Format != "xlsx" {
		t.Errorf("LoadFromFlags() Format = %v, want %v", cfg.Format, "xlsx")
	}
	if cfg.Backend != "ledongthuc" {
		t.Errorf("LoadFromFlags() Backend = %v, want %v", cfg.Backend, "ledongthuc")
	}
	if cfg.SeedIndex != 2 {
		t.Errorf("LoadFromFlags() SeedIndex = %v, want %v (flag should override file)", cfg.SeedIndex, 2)
	}
}

func TestLoadFromFlags_MissingConfigFile(t *testing.T) {
	prepare(t, "--config="+filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadFromFlags()
	if err == nil {
		t.Fatal("LoadFromFlags() expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("LoadFromFlags() error = %v, want error about config file", err)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "mode", args: []string{"--mode=server"}, wantErr: "mode must be either 'cli' or 'stdio'"},
		{name: "format", args: []string{"--format=json"}, wantErr: "invalid format"},
		{name: "align", args: []string{"--align=fuzzy"}, wantErr: "invalid alignment"},
		{name: "backend", args: []string{"--backend=custom"}, wantErr: "invalid backend"},
		{name: "seed", args: []string{"--seed=-1"}, wantErr: "seed index cannot be negative"},
		{name: "log level", args: []string{"--loglevel=invalid"}, wantErr: "invalid log level"},
		{name: "export name", args: []string{"--out=sub/export.csv"}, wantErr: "plain file name"},
		{name: "pdf export name", args: []string{"--out=summary.pdf"}, wantErr: "must not end in .pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prepare(t, append(tt.args, "--dir="+t.TempDir())...)

			_, err := LoadFromFlags()
			if err == nil {
				t.Fatalf("LoadFromFlags() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromFlags() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	prepare(t, "--version")

	_, err := LoadFromFlags()
	if !errors.Is(err, ErrVersionRequested) {
		t.Errorf("LoadFromFlags() error = %v, want %v", err, ErrVersionRequested)
	}
}
