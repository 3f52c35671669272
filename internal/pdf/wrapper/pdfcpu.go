package wrapper

import (
	"fmt"
	"os"

	"github.com/a3tai/pdf-form-export/internal/log"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPULibrary implements PDFLibrary using pdfcpu
type PDFCPULibrary struct {
	config FactoryConfig
}

// NewPDFCPULibrary creates a new pdfcpu library wrapper
func NewPDFCPULibrary(config FactoryConfig) *PDFCPULibrary {
	return &PDFCPULibrary{config: config}
}

// GetLibraryType returns the library type
func (p *PDFCPULibrary) GetLibraryType() LibraryType {
	return LibraryPDFCPU
}

// ReadFields reads the whole document into a pdfcpu context, releases the
// file and walks catalog -> AcroForm -> Fields.
func (p *PDFCPULibrary) ReadFields(path string) ([]RawField, error) {
	ctx, err := p.readContext(path)
	if err != nil {
		return nil, err
	}

	fields, err := p.resolveFields(ctx)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "resolve_fields", Path: path, Err: err}
	}

	if p.config.DebugMode {
		log.Debugf("pdfcpu: %s has %d form fields", path, len(fields))
	}
	return fields, nil
}

func (p *PDFCPULibrary) readContext(path string) (*model.Context, error) {
	if err := checkFile(path, p.config.MaxFileSize); err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Path: path, Err: err}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open_file",
			Path:    path,
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open_file",
			Path:    path,
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if ctx.Encrypt != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open_file", Path: path, Err: ErrEncrypted}
	}

	return ctx, nil
}

func (p *PDFCPULibrary) resolveFields(ctx *model.Context) ([]RawField, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found || acroFormObj == nil {
		return nil, ErrNoAcroForm
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, ErrNoAcroForm
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found || fieldsObj == nil {
		return nil, ErrNoFields
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFields, err)
	}

	fields := make([]RawField, 0, len(fieldsArray))
	for i, fieldRef := range fieldsArray {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			return nil, fmt.Errorf("field %d: %w", i, ErrInvalidField)
		}

		name, err := entryValue(ctx, fieldDict, "T")
		if err != nil {
			return nil, fmt.Errorf("field %d: T: %w", i, err)
		}
		value, err := entryValue(ctx, fieldDict, "V")
		if err != nil {
			return nil, fmt.Errorf("field %d: V: %w", i, err)
		}

		fields = append(fields, RawField{Name: name, Value: value})
	}

	return fields, nil
}

// entryValue dereferences dict[key] and converts it to a RawValue.
func entryValue(ctx *model.Context, dict types.Dict, key string) (RawValue, error) {
	obj, found := dict.Find(key)
	if !found || obj == nil {
		return RawValue{}, nil
	}

	obj, err := ctx.Dereference(obj)
	if err != nil {
		return RawValue{}, fmt.Errorf("failed to dereference: %w", err)
	}

	switch o := obj.(type) {
	case nil:
		return RawValue{}, nil
	case types.StringLiteral:
		b, err := types.Unescape(string(o))
		if err != nil {
			return RawValue{}, fmt.Errorf("invalid string literal: %w", err)
		}
		return StringValue(b), nil
	case types.HexLiteral:
		b, err := o.Bytes()
		if err != nil {
			return RawValue{}, fmt.Errorf("invalid hex string: %w", err)
		}
		return StringValue(b), nil
	case types.Name:
		return NameValue(string(o)), nil
	default:
		return OtherValue(o.String()), nil
	}
}
