package storage

import (
	"path/filepath"
	"testing"
)

func TestSaveAndReadFile(t *testing.T) {
	s := &Storage{}
	path := filepath.Join(t.TempDir(), "nested", "out", "items.yaml")

	if s.HasFile(path) {
		t.Fatal("HasFile() = true before save")
	}
	if err := s.SaveFile(path, []byte("itemType: book\n")); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	if !s.HasFile(path) {
		t.Error("HasFile() = false after save")
	}

	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "itemType: book\n" {
		t.Errorf("ReadFile() = %q", data)
	}

	stats, err := s.GetFileStats(path)
	if err != nil {
		t.Fatalf("GetFileStats() error = %v", err)
	}
	if stats.SizeBytes != int64(len(data)) {
		t.Errorf("SizeBytes = %d, want %d", stats.SizeBytes, len(data))
	}
}

func TestReadFile_Missing(t *testing.T) {
	s := &Storage{}
	if _, err := s.ReadFile(filepath.Join(t.TempDir(), "missing.ris")); err == nil {
		t.Error("ReadFile() on missing file should return error")
	}
}
