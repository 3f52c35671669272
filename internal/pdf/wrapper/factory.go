package wrapper

import (
	"fmt"
	"os"
	"strings"
)

// DefaultMaxFileSize bounds the size of a single input document.
const DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

// PDFLibraryFactory creates PDF library instances with unified interface
type PDFLibraryFactory struct {
	config FactoryConfig
}

// FactoryConfig contains configuration options for the factory
type FactoryConfig struct {
	// PreferredLibrary is the library used when LibraryAuto is requested
	PreferredLibrary LibraryType `json:"preferred_library"`

	// MaxFileSize limits the size of documents handed to a library (in bytes)
	MaxFileSize int64 `json:"max_file_size"`

	// DebugMode enables per-field debug logging in the libraries
	DebugMode bool `json:"debug_mode"`
}

// NewPDFLibraryFactory creates a new factory with default configuration
func NewPDFLibraryFactory() *PDFLibraryFactory {
	return &PDFLibraryFactory{
		config: FactoryConfig{
			PreferredLibrary: LibraryPDFCPU,
			MaxFileSize:      DefaultMaxFileSize,
		},
	}
}

// NewPDFLibraryFactoryWithConfig creates a factory with custom configuration
func NewPDFLibraryFactoryWithConfig(config FactoryConfig) *PDFLibraryFactory {
	if config.PreferredLibrary == "" || config.PreferredLibrary == LibraryAuto {
		config.PreferredLibrary = LibraryPDFCPU
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	return &PDFLibraryFactory{config: config}
}

// Create instantiates a PDF library of the specified type
func (f *PDFLibraryFactory) Create(libType LibraryType) (PDFLibrary, error) {
	switch libType {
	case LibraryPDFCPU:
		return NewPDFCPULibrary(f.config), nil
	case LibraryLedongthuc:
		return NewLedongthucLibrary(f.config), nil
	case LibraryAuto, "":
		return f.Create(f.config.PreferredLibrary)
	default:
		return nil, &WrapperError{
			Library: libType,
			Op:      "create",
			Err:     fmt.Errorf("%w: %s", ErrUnsupportedLibrary, libType),
		}
	}
}

// GetConfig returns the factory configuration
func (f *PDFLibraryFactory) GetConfig() FactoryConfig {
	return f.config
}

// SupportedLibraries returns the concrete library types the factory can create
func SupportedLibraries() []LibraryType {
	return []LibraryType{LibraryPDFCPU, LibraryLedongthuc}
}

// ParseLibraryType maps a configuration string to a LibraryType
func ParseLibraryType(s string) (LibraryType, error) {
	switch lt := LibraryType(strings.ToLower(strings.TrimSpace(s))); lt {
	case LibraryPDFCPU, LibraryLedongthuc, LibraryAuto:
		return lt, nil
	default:
		return "", fmt.Errorf("%w: %q (must be one of: pdfcpu, ledongthuc, auto)", ErrUnsupportedLibrary, s)
	}
}

// checkFile rejects paths that are not readable, non-empty regular files
// within the size limit.
func checkFile(path string, maxFileSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() == 0 {
		return ErrEmptyFile
	}
	if maxFileSize > 0 && info.Size() > maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, info.Size(), maxFileSize)
	}
	return nil
}
