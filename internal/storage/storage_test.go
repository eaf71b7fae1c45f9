package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGet_MissingFileReportsAbsent(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "storage.toml"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	value, ok, err := s.Get(SlotCart)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("Get = (%q, %v), want absent", value, ok)
	}
}

func TestSet_CreatesFileAndDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "storage.toml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.Set(SlotTheme, "Slate"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := s.Set(SlotCart, `[{"id":1}]`); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	reopened, _ := Open(path)
	theme, ok, err := reopened.Get(SlotTheme)
	if err != nil || !ok || theme != "Slate" {
		t.Fatalf("Get(theme) = (%q, %v, %v), want Slate", theme, ok, err)
	}
	cart, ok, err := reopened.Get(SlotCart)
	if err != nil || !ok || cart != `[{"id":1}]` {
		t.Fatalf("Get(cart) = (%q, %v, %v), want stored JSON", cart, ok, err)
	}
}

func TestDelete_RemovesSlot(t *testing.T) {
	s, _ := Open(filepath.Join(t.TempDir(), "storage.toml"))
	if err := s.Set(SlotAuthToken, "tok"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := s.Delete(SlotAuthToken); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok, _ := s.Get(SlotAuthToken); ok {
		t.Fatalf("slot still present after Delete")
	}
	if err := s.Delete("never-set"); err != nil {
		t.Fatalf("Delete(missing) returned error: %v", err)
	}
}

func TestGet_CorruptFileReturnsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.toml")
	if err := os.WriteFile(path, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, _ := Open(path)
	_, _, err := s.Get(SlotCart)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("Get error = %v, want ErrStorage", err)
	}

	// Writes recover the file.
	if err := s.Set(SlotCart, "[]"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if value, ok, err := s.Get(SlotCart); err != nil || !ok || value != "[]" {
		t.Fatalf("Get after Set = (%q, %v, %v), want []", value, ok, err)
	}
}

func TestOpen_EmptyPathFails(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, ErrStorage) {
		t.Fatalf("Open(\"\") error = %v, want ErrStorage", err)
	}
}
