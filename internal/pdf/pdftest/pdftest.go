// Package pdftest builds small AcroForm documents for tests.
//
// Field entries are given in PDF object syntax, so a test can produce any
// string, hex string or name value:
//
//	pdftest.Field{T: "(Name)", V: "(Alice)"}
//	pdftest.Field{T: "(Active)", V: "/Off"}
//	pdftest.Field{T: "(Notes)", V: "<FEFF00480069>"}
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Field is one AcroForm field. An empty V leaves the entry out.
type Field struct {
	T string
	V string
}

// Options changes the document structure.
type Options struct {
	NoAcroForm bool // catalog without /AcroForm
	NoFields   bool // /AcroForm without /Fields
}

const (
	catalogObj  = 1
	pagesObj    = 2
	pageObj     = 3
	acroFormObj = 4
	firstField  = 5
)

// Build returns a complete PDF with a classic xref table.
func Build(fields []Field, opts Options) []byte {
	bodies := []string{
		catalog(opts),
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
		acroForm(len(fields), opts),
	}
	for _, f := range fields {
		bodies = append(bodies, fieldDict(f))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(bodies))
	for i, body := range bodies {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(bodies)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := fmt.Sprintf("/Size %d /Root %d 0 R", len(bodies)+1, catalogObj)
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", trailer, xref)

	return buf.Bytes()
}

// WriteFile writes Build(fields, opts) to path.
func WriteFile(path string, fields []Field, opts Options) error {
	return os.WriteFile(path, Build(fields, opts), 0o644)
}

// Cipher selects the encryption applied by WriteEncryptedFile.
type Cipher int

const (
	RC4128 Cipher = iota // RC4, 128-bit key
	AES256               // AES, 256-bit key
)

// OwnerPassword is the owner password of encrypted fixtures. The user
// password is empty, so readers can open them without prompting.
const OwnerPassword = "owner"

// WriteEncryptedFile writes the form to path encrypted by pdfcpu.
func WriteEncryptedFile(path string, fields []Field, cipher Cipher) error {
	plain := path + ".plain"
	if err := WriteFile(plain, fields, Options{}); err != nil {
		return err
	}
	defer os.Remove(plain)

	var conf *model.Configuration
	switch cipher {
	case AES256:
		conf = model.NewAESConfiguration("", OwnerPassword, 256)
	default:
		conf = model.NewRC4Configuration("", OwnerPassword, 128)
	}
	conf.ValidationMode = model.ValidationRelaxed

	return api.EncryptFile(plain, path, conf)
}

func catalog(opts Options) string {
	if opts.NoAcroForm {
		return fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	}
	return fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm %d 0 R >>", pagesObj, acroFormObj)
}

func acroForm(n int, opts Options) string {
	if opts.NoFields {
		return "<< /DA (/Helv 0 Tf 0 g) >>"
	}
	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("%d 0 R", firstField+i)
	}
	return fmt.Sprintf("<< /Fields [%s] >>", strings.Join(refs, " "))
}

func fieldDict(f Field) string {
	ft := "/Tx"
	if strings.HasPrefix(f.V, "/") {
		ft = "/Btn"
	}
	entries := []string{"/FT " + ft, fmt.Sprintf("/P %d 0 R", pageObj)}
	if f.T != "" {
		entries = append(entries, "/T "+f.T)
	}
	if f.V != "" {
		entries = append(entries, "/V "+f.V)
	}
	return "<< " + strings.Join(entries, " ") + " >>"
}
