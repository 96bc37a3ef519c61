// Package documents extracts plain text from uploaded knowledge files.
package documents

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrUnsupportedType is returned for files that are not PDF, DOCX,
	// plain text or Markdown.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrEmptyDocument is returned when a file contains no extractable text.
	ErrEmptyDocument = errors.New("document contains no text")
	// ErrTooLarge is returned when a file exceeds the size limit.
	ErrTooLarge = errors.New("document too large")
)

// DefaultMaxBytes is used when an Extractor has no limit set.
const DefaultMaxBytes int64 = 10 << 20

// Kind is a supported document format.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
)

// Extracted is the text of a document.
type Extracted struct {
	Kind  Kind
	Text  string
	Pages int
	Words int
}

// Extractor extracts text from files up to MaxBytes.
type Extractor struct {
	MaxBytes int64
}

// Extract extracts text with the default size limit.
func Extract(filename, contentType string, data []byte) (Extracted, error) {
	return Extractor{}.Extract(filename, contentType, data)
}

// Extract dispatches on the file extension, falling back to the content type.
func (e Extractor) Extract(filename, contentType string, data []byte) (Extracted, error) {
	limit := e.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if int64(len(data)) > limit {
		return Extracted{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), limit)
	}

	kind, err := Detect(filename, contentType)
	if err != nil {
		return Extracted{}, err
	}

	out := Extracted{Kind: kind}
	switch kind {
	case KindPDF:
		out.Text, out.Pages, err = extractPDF(data)
	case KindDOCX:
		out.Text, err = extractDOCX(data)
	default:
		out.Text, err = extractText(data)
	}
	if err != nil {
		return Extracted{}, fmt.Errorf("extracting %s: %w", filename, err)
	}

	out.Text = Normalize(out.Text)
	if out.Text == "" {
		return Extracted{}, fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}
	out.Words = len(strings.Fields(out.Text))
	return out, nil
}

// Detect maps a filename or MIME type to a supported Kind.
func Detect(filename, contentType string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDOCX, nil
	case ".txt", ".text":
		return KindText, nil
	case ".md", ".markdown":
		return KindMarkdown, nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/pdf":
		return KindPDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDOCX, nil
	case "text/plain":
		return KindText, nil
	case "text/markdown", "text/x-markdown":
		return KindMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
}

// Supported reports whether filename has a supported extension.
func Supported(filename string) bool {
	_, err := Detect(filename, "")
	return err == nil
}

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
)

// Normalize unifies line endings, drops control characters, collapses runs of
// spaces and limits blank lines to one, keeping paragraph breaks intact.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == '\uFEFF' {
			return -1
		}
		return r
	}, text)
	text = spaceRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func extractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: binary content in text file", ErrUnsupportedType)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
