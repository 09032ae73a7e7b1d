package sqlite

import (
	"testing"
)

func TestMigrateUp_AppliesSchemaAndSeed(t *testing.T) {
	t.Parallel()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp returned error: %v", err)
	}

	version, err := MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion returned error: %v", err)
	}
	if version < 2 {
		t.Errorf("migration version = %d, want >= 2", version)
	}

	var categories int
	if err := db.QueryRow("SELECT COUNT(*) FROM category").Scan(&categories); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if categories == 0 {
		t.Error("expected seeded categories")
	}

	var managers int
	if err := db.QueryRow("SELECT COUNT(*) FROM app_user WHERE role = 'manager'").Scan(&managers); err != nil {
		t.Fatalf("count managers: %v", err)
	}
	if managers == 0 {
		t.Error("expected at least one seeded manager")
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	t.Parallel()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first MigrateUp returned error: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second MigrateUp returned error: %v", err)
	}
}

func TestVersionFromFilename(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"001_init_schema.up.sql":    1,
		"002_seed_demo_data.up.sql": 2,
		"042_add_receipts.up.sql":   42,
		"no_numeric_prefix.up.sql":  0,
	}
	for name, want := range cases {
		if got := versionFromFilename(name); got != want {
			t.Errorf("versionFromFilename(%q) = %d, want %d", name, got, want)
		}
	}
}
