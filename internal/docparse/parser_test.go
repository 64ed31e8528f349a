package docparse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileParser_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Feature\n\nAdd a bio field."), 0644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	got, err := NewFileParser(nil).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got != "# Feature\n\nAdd a bio field." {
		t.Errorf("Parse = %q", got)
	}
}

func TestFileParser_UnsupportedFormatIsEmptyNotError(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"deck.pptx", "sheet.xlsx", "image.png"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte{0x50, 0x4b}, 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		got, err := NewFileParser(nil).Parse(path)
		if err != nil {
			t.Errorf("Parse(%s) returned error: %v", name, err)
		}
		if got != "" {
			t.Errorf("Parse(%s) = %q, want empty", name, got)
		}
	}
}

func TestFileParser_MissingFileIsError(t *testing.T) {
	_, err := NewFileParser(nil).Parse(filepath.Join(t.TempDir(), "absent.md"))
	if err == nil {
		t.Fatal("Parse of missing file did not error")
	}
}
