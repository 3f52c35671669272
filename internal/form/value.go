// Package form turns the raw AcroForm fields of a document into a field
// schema and coerced values.
package form

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/a3tai/pdf-form-export/internal/pdf/wrapper"
)

// Kind is the type of a coerced field value.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindInteger
)

// Value is a coerced field value.
type Value struct {
	Kind Kind
	Text string
	Int  int
}

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Integer returns an integer value.
func Integer(n int) Value { return Value{Kind: KindInteger, Int: n} }

// IsEmpty reports whether coercion produced no value.
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// String renders the value as an export cell.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindInteger:
		return strconv.Itoa(v.Int)
	default:
		return ""
	}
}

// Interface returns the value as a string, an int, or nil.
func (v Value) Interface() any {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindInteger:
		return v.Int
	default:
		return nil
	}
}

// Literals maps PostScript-literal tokens (without the slash) to integers.
type Literals map[string]int

// DefaultLiterals is the coercion dictionary for checkbox states.
func DefaultLiterals() Literals {
	return Literals{
		"Off": 0,
		"Yes": 1,
	}
}

var utf16BOM = []byte{0xfe, 0xff}

// DecodeText decodes PDF string bytes as text. Bytes starting with the
// UTF-16BE byte order mark are decoded as UTF-16BE. This goes beyond plain
// UTF-8 decoding, under which such a value would be an empty cell and such
// a field name would fail the schema. Anything else must be valid UTF-8 and
// is returned unchanged.
func DecodeText(b []byte) (string, bool) {
	if bytes.HasPrefix(b, utf16BOM) {
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
		if err != nil {
			return "", false
		}
		return string(decoded), true
	}
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// Decode coerces a field's V entry. Strings that decode as text are kept
// verbatim. Everything else is reduced to its literal token and looked up
// in literals; a miss yields an empty value.
func Decode(raw wrapper.RawValue, literals Literals) Value {
	if raw.Kind == wrapper.KindString {
		if s, ok := DecodeText(raw.Bytes); ok {
			return Text(s)
		}
	}

	if n, ok := literals[cleanToken(raw.String())]; ok {
		return Integer(n)
	}
	return Value{}
}

// cleanToken strips the slash and quote decoration a literal carries in
// its printed form, e.g. /Yes or /'Yes'.
func cleanToken(token string) string {
	token = strings.Trim(token, `\/`)
	return strings.Trim(token, "'")
}
