package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an empty in-memory SQLite database closed when the
// test ends. The pool is pinned to one connection so every query sees the
// same database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedKV inserts raw JSON values into a kv table, creating it if needed
func SeedKV(t *testing.T, db *sql.DB, values map[string]string) {
	t.Helper()
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		t.Fatalf("Failed to create kv table: %v", err)
	}
	for k, v := range values {
		if _, err := db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)", k, v); err != nil {
			t.Fatalf("Failed to insert %s: %v", k, err)
		}
	}
}
