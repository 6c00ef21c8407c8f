package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !s.SaveHistory() {
		t.Error("save_history should default to true")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written: %v", err)
	}
}

func TestOpenReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.yaml")
	content := "name: Alex\nprivacy_security:\n  save_history: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Config().Name != "Alex" {
		t.Errorf("name = %q", s.Config().Name)
	}
	if s.SaveHistory() {
		t.Error("save_history should be false")
	}
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Update(func(c *Config) { c.PrivacySecurity.SaveHistory = false }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.SaveHistory() {
		t.Error("update was not persisted")
	}
}

func TestInMemoryNeverWrites(t *testing.T) {
	dir := t.TempDir()
	s := InMemory()
	if err := s.Update(func(c *Config) { c.Name = "ghost" }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Config().Name != "ghost" {
		t.Error("in-memory update lost")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("in-memory settings wrote files: %v", entries)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	content := "name: Edited\nprivacy_security:\n  save_history: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.Config().Name != "Edited" || s.SaveHistory() {
		t.Errorf("reload did not pick up edits: %+v", s.Config())
	}
}
