package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveKeepsExtensionAndReturnsPublicURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	url, err := store.Save([]byte("jpeg bytes"), "Suit Photo.JPG")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !strings.HasPrefix(url, URLPrefix) {
		t.Errorf("url missing public prefix: %s", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("extension not preserved (lowercased): %s", url)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(url, URLPrefix)))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestSaveSameFilenameNeverCollides(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	first, err := store.Save([]byte("one"), "photo.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := store.Save([]byte("two"), "photo.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct urls for repeated filename, got %s twice", first)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 stored files, got %d", len(entries))
	}
}

func TestNewFileStoreRejectsEmptyDir(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for blank directory")
	}
}
