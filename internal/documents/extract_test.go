package documents

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        Kind
		wantErr     bool
	}{
		{"resume.PDF", "", KindPDF, false},
		{"cv.docx", "", KindDOCX, false},
		{"notes.txt", "", KindText, false},
		{"README.md", "", KindMarkdown, false},
		{"post.markdown", "", KindMarkdown, false},
		{"upload", "application/pdf", KindPDF, false},
		{"upload", "text/plain; charset=utf-8", KindText, false},
		{"photo.png", "image/png", "", true},
		{"legacy.doc", "application/msword", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename+tt.contentType, func(t *testing.T) {
			got, err := Detect(tt.filename, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, Supported("a.md"))
	assert.False(t, Supported("a.exe"))
}

func TestExtract_Text(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Hello   world\r\n\r\n\r\n\r\nSecond\tparagraph here  \n")...)
	got, err := Extract("notes.txt", "", data)
	require.NoError(t, err)
	assert.Equal(t, KindText, got.Kind)
	assert.Equal(t, "Hello world\n\nSecond paragraph here", got.Text)
	assert.Equal(t, 5, got.Words)
	assert.Zero(t, got.Pages)
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:t xml:space="preserve"> engineer</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Led</w:t><w:tab/><w:t>platform team</w:t></w:r></w:p>`)
	got, err := Extract("cv.docx", "", data)
	require.NoError(t, err)
	assert.Equal(t, KindDOCX, got.Kind)
	assert.Equal(t, "Senior engineer\n\nLed platform team", got.Text)
}

func TestExtract_DocxWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract("cv.docx", "", buf.Bytes())
	assert.Error(t, err)
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract("empty.md", "", []byte("  \n\n "))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = Extract("image.gif", "", []byte("GIF89a"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Extractor{MaxBytes: 4}.Extract("big.txt", "", []byte("hello"))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Extract("fake.pdf", "", []byte("not a pdf at all"))
	assert.Error(t, err)

	_, err = Extract("bin.txt", "", []byte{'a', 0, 'b'})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b\n\nc", Normalize("  a   b \n\n\n\n c\x00 "))
	assert.Equal(t, "", Normalize(strings.Repeat("\n", 5)))
}
