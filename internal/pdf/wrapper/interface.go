package wrapper

import (
	"errors"
	"fmt"
	"strconv"
)

// PDFLibrary reads the interactive-form field list of a PDF file.
type PDFLibrary interface {
	// ReadFields loads the document at path and returns the entries of its
	// AcroForm Fields array in document order. The file is closed before
	// ReadFields returns.
	ReadFields(path string) ([]RawField, error)

	// Library identification
	GetLibraryType() LibraryType
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
	LibraryAuto       LibraryType = "auto" // Resolves to the factory's preferred library
)

// ValueKind classifies a PDF object read from a field dictionary.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindString
	KindName
	KindOther
)

func (k ValueKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// RawValue is a library-neutral view of a field entry such as T or V.
type RawValue struct {
	Kind ValueKind
	// Bytes holds the unescaped content of a literal or hex string.
	Bytes []byte
	// Token holds a name without its leading slash, or the textual form of
	// any other object.
	Token string
}

// StringValue returns a RawValue for string content.
func StringValue(b []byte) RawValue {
	return RawValue{Kind: KindString, Bytes: b}
}

// NameValue returns a RawValue for the name /n.
func NameValue(n string) RawValue {
	return RawValue{Kind: KindName, Token: n}
}

// OtherValue returns a RawValue for a number, array, dictionary or any
// other object, carried by its textual form.
func OtherValue(repr string) RawValue {
	return RawValue{Kind: KindOther, Token: repr}
}

// String renders the value the way it appears in PDF object syntax.
func (v RawValue) String() string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(string(v.Bytes))
	case KindName:
		return "/" + v.Token
	case KindOther:
		return v.Token
	default:
		return ""
	}
}

// RawField is one entry of the AcroForm Fields array.
type RawField struct {
	Name  RawValue // T
	Value RawValue // V
}

// WrapperError provides context about library-specific errors
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Path    string      `json:"path,omitempty"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("PDF %s library error in %s for %s: %v", e.Library, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrUnsupportedLibrary = errors.New("unsupported library type")
	ErrNoAcroForm         = errors.New("document has no AcroForm dictionary")
	ErrNoFields           = errors.New("AcroForm has no Fields array")
	ErrInvalidField       = errors.New("field entry is not a dictionary")
	ErrEncrypted          = errors.New("encrypted documents are not supported")
	ErrEmptyFile          = errors.New("file is empty")
	ErrFileTooLarge       = errors.New("file too large")
)
