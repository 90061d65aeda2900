package security

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputValidator(t *testing.T) {
	v := NewInputValidator(0)
	assert.Equal(t, int64(DefaultMaxDocumentBytes), v.MaxBytes)

	dicom := append(bytes.Repeat([]byte{0}, 128), []byte("DICM rest")...)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		msg     string
	}{
		{"clinical note", []byte("Patient has chest pain.\r\n\tBP 120/80\f"), nil, ""},
		{"accented text", []byte("dolor torácico, café, naïve"), nil, ""},
		{"byte order mark", []byte("\xEF\xBB\xBFheat stroke"), nil, ""},
		{"empty", nil, nil, ""},
		{"pdf", []byte("%PDF-1.7\n..."), ErrBinary, "PDF"},
		{"docx", []byte{0x50, 0x4B, 0x03, 0x04, 'x'}, ErrBinary, "ZIP archive"},
		{"dicom", dicom, ErrBinary, "DICOM"},
		{"nul byte", []byte("chest\x00pain"), ErrBinary, ""},
		{"control bytes", bytes.Repeat([]byte{1, 2, 'a'}, 10), ErrBinary, ""},
		{"latin-1", []byte("caf\xe9"), ErrInvalidUTF8, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadDocumentLimit(t *testing.T) {
	v := NewInputValidator(10)

	got, err := v.ReadDocument(strings.NewReader("heat ready"))
	require.NoError(t, err)
	assert.Equal(t, "heat ready", got)

	_, err = v.ReadDocument(strings.NewReader("heat stroke"))
	assert.ErrorIs(t, err, ErrTooLarge)
}
