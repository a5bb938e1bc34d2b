package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"topmovies/pkg/database"
)

func TestDefaultConfigHonoursEnv(t *testing.T) {
	t.Setenv("TOPMOVIES_DB_PATH", "/tmp/custom.db")
	if got := database.DefaultConfig().Path; got != "/tmp/custom.db" {
		t.Fatalf("expected env override, got %q", got)
	}
}

func TestOpenCreatesDirAndMigrateIsRepeatable(t *testing.T) {
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "nested", "movies.db")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for i := 0; i < 2; i++ {
		if err := database.Migrate(db); err != nil {
			t.Fatalf("Migrate run %d returned error: %v", i+1, err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&count); err != nil {
		t.Fatalf("query movies table: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty table, got %d rows", count)
	}
}

func TestSettingsApplyToEveryConnection(t *testing.T) {
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "movies.db")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	// hold the connections at once so the pool has to open separate ones
	for i := 0; i < 3; i++ {
		conn, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		t.Cleanup(func() { _ = conn.Close() })

		var busy, fk int
		var journal string
		if err := conn.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busy); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk); err != nil {
			t.Fatalf("conn %d foreign_keys: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&journal); err != nil {
			t.Fatalf("conn %d journal_mode: %v", i, err)
		}
		if busy != 5000 || fk != 1 || journal != "wal" {
			t.Fatalf("conn %d: busy_timeout=%d foreign_keys=%d journal_mode=%q", i, busy, fk, journal)
		}
	}
}
