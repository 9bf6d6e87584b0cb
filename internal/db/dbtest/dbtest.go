// Package dbtest opens throwaway migrated databases for package tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
)

// New returns a migrated database in t.TempDir(), closed on cleanup.
func New(t *testing.T) (*sql.DB, *gorm.DB) {
	t.Helper()
	sqlDB, gdb, err := dbpkg.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB, gdb
}

// Club inserts a club row and returns its id.
func Club(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO clubs (name) VALUES (?)`, name)
	if err != nil {
		t.Fatalf("insert club %q: %v", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("club id: %v", err)
	}
	return id
}

// Athlete inserts an athlete playing for clubID and returns its id.
func Athlete(t *testing.T, db *sql.DB, document string, clubID int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO athletes (document_id, first_name, last_name, club_id) VALUES (?, ?, ?, ?)`,
		document, "Ana", "Gómez", clubID)
	if err != nil {
		t.Fatalf("insert athlete %q: %v", document, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("athlete id: %v", err)
	}
	return id
}

// Event inserts a planned tournament and returns its id.
func Event(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	now := time.Now().UTC()
	res, err := db.Exec(`INSERT INTO events (name, start_date, end_date, type, organizer_id, state, created_at, updated_at)
		VALUES (?, ?, ?, 'tournament', 1, 'planned', ?, ?)`, name, now, now.Add(72*time.Hour), now, now)
	if err != nil {
		t.Fatalf("insert event %q: %v", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("event id: %v", err)
	}
	return id
}
