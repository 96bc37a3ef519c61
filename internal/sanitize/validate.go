// Package sanitize cleans identifiers and file names that arrive from
// untrusted clients.
package sanitize

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation errors for security checks.
var (
	// ErrInvalidFilename indicates an upload name with nothing usable left
	// after cleaning.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrInvalidVisitorID indicates the visitor ID format is invalid.
	ErrInvalidVisitorID = errors.New("invalid visitor ID format")

	// ErrPathTraversal indicates a path escapes its allowed root.
	ErrPathTraversal = errors.New("path escapes allowed root")
)

// MaxFilenameLength caps cleaned file names in bytes.
const MaxFilenameLength = 255

// MaxVisitorIDLength caps visitor identifiers.
const MaxVisitorIDLength = 128

// visitorIDPattern accepts UUIDs and the opaque IDs browsers keep in
// localStorage.
var visitorIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)

// Filename reduces an uploaded file name to a safe base name. Browsers on
// Windows may send full paths with backslashes; only the last element is
// kept. Control characters are dropped and long names are shortened while
// keeping the extension.
func Filename(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: nothing left after cleaning", ErrInvalidFilename)
	}
	if len(name) > MaxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = truncateBytes(name[:len(name)-len(ext)], MaxFilenameLength-len(ext)) + ext
	}
	return name, nil
}

// VisitorID trims id and checks its format. An empty id is valid and means
// "assign one".
func VisitorID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", nil
	}
	if len(id) > MaxVisitorIDLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidVisitorID, MaxVisitorIDLength)
	}
	if !visitorIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVisitorID, id)
	}
	return id, nil
}

// ValidatePath makes path absolute and checks that it lies within root. The
// check is lexical; resolve symlinks first when they matter.
func ValidatePath(path, root string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathTraversal)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if root == "" {
		return absPath, nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}
	return absPath, nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
