package sqlite

import (
	"path/filepath"
	"testing"
)

func TestNewDB_InMemory(t *testing.T) {
	t.Parallel()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB(\":memory:\") returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys pragma = %d, want 1", fk)
	}
}

func TestNewDB_MissingParentDir(t *testing.T) {
	t.Parallel()

	_, err := NewDB(filepath.Join(t.TempDir(), "does-not-exist", "app.db"))
	if err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}

func TestNewDB_CreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.db")
	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB(%q) returned error: %v", path, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Ping(); err != nil {
		t.Errorf("ping: %v", err)
	}
}
