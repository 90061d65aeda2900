// Package security screens documents before they reach the matcher.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultMaxDocumentBytes caps a single document.
const DefaultMaxDocumentBytes = 32 << 20

// headerSize is how much of a document is inspected for signatures and
// control bytes.
const headerSize = 64 * 1024

var (
	ErrTooLarge    = errors.New("document exceeds size limit")
	ErrBinary      = errors.New("document appears to be binary")
	ErrInvalidUTF8 = errors.New("document is not valid UTF-8")
)

// signature is a container format that must be converted to text first.
type signature struct {
	name  string
	magic []byte
}

var signatures = []signature{
	{"PDF", []byte("%PDF-")},
	{"PNG image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"JPEG image", []byte{0xFF, 0xD8, 0xFF}},
	{"GIF image", []byte("GIF8")},
	{"ZIP archive (docx, xlsx or odt)", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"legacy Office document", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	{"RTF document", []byte(`{\rtf`)},
}

// InputValidator rejects documents that are not plain UTF-8 text.
type InputValidator struct {
	MaxBytes int64
}

// NewInputValidator returns a validator with the given size cap; zero or
// negative selects DefaultMaxDocumentBytes.
func NewInputValidator(maxBytes int64) *InputValidator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &InputValidator{MaxBytes: maxBytes}
}

// ReadDocument reads r up to the size cap and validates the result.
func (v *InputValidator) ReadDocument(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, v.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if err := v.Validate(data); err != nil {
		return "", err
	}
	return string(data), nil
}

// Validate checks size, container signatures, control bytes and encoding.
func (v *InputValidator) Validate(data []byte) error {
	if int64(len(data)) > v.MaxBytes {
		return fmt.Errorf("%w (%d bytes)", ErrTooLarge, v.MaxBytes)
	}

	header := data
	if len(header) > headerSize {
		header = header[:headerSize]
	}

	if name := detectFormat(data); name != "" {
		return fmt.Errorf("%w: looks like a %s, extract its text first", ErrBinary, name)
	}
	if isBinaryData(header) {
		return ErrBinary
	}

	// a leading byte order mark is tolerated
	if !utf8.Valid(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))) {
		return ErrInvalidUTF8
	}
	return nil
}

func detectFormat(data []byte) string {
	for _, s := range signatures {
		if bytes.HasPrefix(data, s.magic) {
			return s.name
		}
	}
	// DICOM puts its marker after a 128 byte preamble
	if len(data) >= 132 && string(data[128:132]) == "DICM" {
		return "DICOM file"
	}
	return ""
}

// isBinaryData reports whether more than 30% of data is control bytes
// other than tab, newline, form feed and carriage return.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}
