package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// visitStore keeps a local record of which apps and tables were opened, so
// the home grid can show when an application was last visited. Everything
// here is best-effort enrichment; failures stay silent.
type visitStore struct {
	db   *sql.DB
	path string
}

func openVisitStore() (*visitStore, error) {
	dir := resolveConfigDir()
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return openVisitStoreAt(filepath.Join(dir, "history.sqlite"))
}

func openVisitStoreAt(sqlitePath string) (*visitStore, error) {
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := migrateVisitStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &visitStore{db: db, path: sqlitePath}, nil
}

func migrateVisitStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS visits (
			app_id TEXT NOT NULL,
			database_name TEXT NOT NULL DEFAULT '',
			table_name TEXT NOT NULL DEFAULT '',
			visited_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (app_id, database_name, table_name)
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("visit store migration failed: %w", err)
		}
	}
	return nil
}

func (s *visitStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *visitStore) Record(appID, database, table string) error {
	if s == nil || s.db == nil {
		return nil
	}
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO visits (app_id, database_name, table_name, visited_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(app_id, database_name, table_name) DO UPDATE SET visited_at = CURRENT_TIMESTAMP`,
		appID, database, table)
	return err
}

// LastVisited returns the most recent visit time per application.
func (s *visitStore) LastVisited() (map[string]time.Time, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT app_id, MAX(visited_at) FROM visits GROUP BY app_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits := make(map[string]time.Time)
	for rows.Next() {
		var appID, at string
		if err := rows.Scan(&appID, &at); err != nil {
			return nil, err
		}
		ts, err := time.Parse("2006-01-02 15:04:05", at)
		if err != nil {
			continue
		}
		visits[appID] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return visits, nil
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
