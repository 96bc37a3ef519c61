package sanitize

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "resume.pdf", want: "resume.pdf"},
		{name: "unix path", in: "/home/jane/cv/resume.pdf", want: "resume.pdf"},
		{name: "windows path", in: `C:\Users\Jane\Documents\resume.docx`, want: "resume.docx"},
		{name: "traversal", in: "../../etc/passwd", want: "passwd"},
		{name: "control characters", in: "notes\x00\r\n.md", want: "notes.md"},
		{name: "surrounding space", in: "  talk.txt ", want: "talk.txt"},
		{name: "empty", in: "", wantErr: ErrInvalidFilename},
		{name: "only dots", in: "foo/..", wantErr: ErrInvalidFilename},
		{name: "trailing slash", in: "uploads/", wantErr: ErrInvalidFilename},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filename(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Filename(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Filename(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilename_LongNameKeepsExtension(t *testing.T) {
	got, err := Filename(strings.Repeat("é", 200) + ".pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > MaxFilenameLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxFilenameLength)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("extension lost: %q", got)
	}
	if !strings.HasPrefix(got, "é") || strings.ContainsRune(got, '\uFFFD') {
		t.Errorf("rune split: %q", got)
	}
}

func TestVisitorID(t *testing.T) {
	valid := []string{"", "visitor-1", "0b6f9a3c-1f7e-4d2b-9d7e-5c1a2b3c4d5e", "anon:abc.def_1"}
	for _, id := range valid {
		if _, err := VisitorID(id); err != nil {
			t.Errorf("VisitorID(%q) unexpected error: %v", id, err)
		}
	}
	if got, _ := VisitorID("  v1 "); got != "v1" {
		t.Errorf("VisitorID did not trim: %q", got)
	}

	invalid := []string{"-leading", "has space", "semi;colon", "<script>", strings.Repeat("a", MaxVisitorIDLength+1)}
	for _, id := range invalid {
		if _, err := VisitorID(id); !errors.Is(err, ErrInvalidVisitorID) {
			t.Errorf("VisitorID(%q) error = %v, want ErrInvalidVisitorID", id, err)
		}
	}
}

func TestValidatePath(t *testing.T) {
	root := t.TempDir()

	got, err := ValidatePath(filepath.Join(root, "inbox", "a.md"), root)
	if err != nil {
		t.Fatalf("path within root: %v", err)
	}
	if got != filepath.Join(root, "inbox", "a.md") {
		t.Errorf("got %q", got)
	}

	for _, p := range []string{filepath.Join(root, "..", "other"), "/etc/passwd", ""} {
		if _, err := ValidatePath(p, root); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("ValidatePath(%q) error = %v, want ErrPathTraversal", p, err)
		}
	}

	if _, err := ValidatePath("relative/file.txt", ""); err != nil {
		t.Errorf("no root: %v", err)
	}
}
