package wrapper

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/a3tai/pdf-form-export/internal/log"
	"github.com/ledongthuc/pdf"
)

// LedongthucLibrary implements PDFLibrary using ledongthuc/pdf
type LedongthucLibrary struct {
	config FactoryConfig
}

// NewLedongthucLibrary creates a new ledongthuc library wrapper
func NewLedongthucLibrary(config FactoryConfig) *LedongthucLibrary {
	return &LedongthucLibrary{config: config}
}

// GetLibraryType returns the library type
func (l *LedongthucLibrary) GetLibraryType() LibraryType {
	return LibraryLedongthuc
}

// ReadFields walks trailer -> Root -> AcroForm -> Fields. ledongthuc/pdf
// reads lazily from the file, so the walk completes before the file is
// closed. The library panics on malformed objects; that is reported as an
// error.
func (l *LedongthucLibrary) ReadFields(path string) (fields []RawField, err error) {
	if err := checkFile(path, l.config.MaxFileSize); err != nil {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "open_file", Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Path:    path,
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "open_file", Path: path, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			fields = nil
			cause := fmt.Errorf("malformed PDF: %v", r)
			if hasEncryptEntry(f, info.Size()) {
				cause = fmt.Errorf("%w: %v", ErrEncrypted, r)
			}
			err = &WrapperError{Library: LibraryLedongthuc, Op: "resolve_fields", Path: path, Err: cause}
		}
	}()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil && hasEncryptEntry(f, info.Size()) {
		// NewReader tries the empty password and fails on most encrypted
		// files before the trailer can be inspected.
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Path:    path,
			Err:     fmt.Errorf("%w: %v", ErrEncrypted, err),
		}
	}
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Path:    path,
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	if !reader.Trailer().Key("Encrypt").IsNull() {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "open_file", Path: path, Err: ErrEncrypted}
	}

	fields, err = l.resolveFields(reader)
	if err != nil {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "resolve_fields", Path: path, Err: err}
	}

	if l.config.DebugMode {
		log.Debugf("ledongthuc: %s has %d form fields", path, len(fields))
	}
	return fields, nil
}

func (l *LedongthucLibrary) resolveFields(reader *pdf.Reader) ([]RawField, error) {
	acroForm := reader.Trailer().Key("Root").Key("AcroForm")
	if acroForm.Kind() != pdf.Dict {
		return nil, ErrNoAcroForm
	}

	fieldsArray := acroForm.Key("Fields")
	if fieldsArray.Kind() != pdf.Array {
		return nil, ErrNoFields
	}

	fields := make([]RawField, 0, fieldsArray.Len())
	for i := 0; i < fieldsArray.Len(); i++ {
		fieldDict := fieldsArray.Index(i)
		if fieldDict.Kind() != pdf.Dict {
			return nil, fmt.Errorf("field %d: %w", i, ErrInvalidField)
		}
		fields = append(fields, RawField{
			Name:  ledongthucValue(fieldDict.Key("T")),
			Value: ledongthucValue(fieldDict.Key("V")),
		})
	}

	return fields, nil
}

func ledongthucValue(v pdf.Value) RawValue {
	switch v.Kind() {
	case pdf.Null:
		return RawValue{}
	case pdf.String:
		return StringValue([]byte(v.RawString()))
	case pdf.Name:
		return NameValue(v.Name())
	default:
		return OtherValue(v.String())
	}
}

// encryptTail bounds the bytes searched for the trailer's Encrypt entry.
const encryptTail = 64 * 1024

// hasEncryptEntry reports whether the end of the file, where the trailer or
// cross-reference stream dictionary lives, names an Encrypt dictionary.
func hasEncryptEntry(r io.ReaderAt, size int64) bool {
	n := min(size, encryptTail)
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, size-n); err != nil && err != io.EOF {
		return false
	}
	return bytes.Contains(buf, []byte("/Encrypt"))
}
