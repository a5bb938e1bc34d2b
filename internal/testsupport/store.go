// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"topmovies/pkg/database"
	"topmovies/pkg/models"
)

// MustOpenDB opens a migrated SQLite database in a per-test temp dir.
func MustOpenDB(t testing.TB) *sql.DB {
	t.Helper()
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "movies.db")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	return db
}

// Inserter is the slice of the movie store that SeedMovie needs.
type Inserter interface {
	Insert(ctx context.Context, m models.NewMovie) (int64, error)
}

// SeedMovie inserts a movie with placeholder metadata and returns its id.
func SeedMovie(t testing.TB, store Inserter, title string, year int) int64 {
	t.Helper()
	id, err := store.Insert(context.Background(), models.NewMovie{
		Title:       title,
		Year:        year,
		Description: title + " description",
		ImgURL:      "https://image.tmdb.org/t/p/w500/" + title + ".jpg",
	})
	if err != nil {
		t.Fatalf("seed %q: %v", title, err)
	}
	return id
}
