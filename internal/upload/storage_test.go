package upload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveNamesFileByTimestamp(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage err: %v", err)
	}

	name, err := s.Save("my scan.png", strings.NewReader("png bytes"))
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if !strings.HasSuffix(name, "-my_scan.png") {
		t.Fatalf("unexpected stored name: %q", name)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "png bytes" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage err: %v", err)
	}

	name, err := s.Save("../../etc/evil.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if strings.Contains(name, "..") || strings.ContainsRune(name, filepath.Separator) {
		t.Fatalf("stored name escapes the upload dir: %q", name)
	}
}

func TestSaveRejectsNonImageTypes(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage err: %v", err)
	}

	if _, err := s.Save("notes.txt", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := s.Save("", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty filename")
	}
}

func TestSaveRejectsOversizedImages(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage err: %v", err)
	}

	big := bytes.NewReader(make([]byte, MaxImageSize+1))
	if _, err := s.Save("big.png", big); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir err: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("oversized file left behind: %v", entries)
	}
}
