package database

import (
	"reflect"
	"testing"
	"testing/fstest"
)

// TestMigrationNamesSorted проверяет порядок и фильтрацию файлов миграций.
func TestMigrationNamesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_b.sql":   {Data: []byte("SELECT 2")},
		"migrations/0001_a.sql":   {Data: []byte("SELECT 1")},
		"migrations/README.md":    {Data: []byte("docs")},
		"migrations/nested/x.sql": {Data: []byte("SELECT 3")},
	}

	got, err := migrationNames(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"0001_a.sql", "0002_b.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestEmbeddedMigrations проверяет, что миграции встроены в бинарник.
func TestEmbeddedMigrations(t *testing.T) {
	names, err := migrationNames(migrationFiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) == 0 || names[0] != "0001_init.sql" {
		t.Fatalf("unexpected embedded migrations: %v", names)
	}
}
