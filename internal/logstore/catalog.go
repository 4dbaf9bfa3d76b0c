package logstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Catalog indexes backup archive entries in SQLite so archived suite logs
// can be listed without walking the backup tree. Archive files themselves
// stay immutable; the catalog is metadata only.
type Catalog struct {
	db *sql.DB
}

// BackupEntry is one archived suite log.
type BackupEntry struct {
	SuiteID   string
	Stamp     time.Time // backup timestamp used for the archive name
	Path      string    // archive file location
	CreatedAt time.Time
}

// OpenCatalog opens (and migrates) a catalog database.
// Use ":memory:" for an in-memory catalog, or a file path for persistence.
func OpenCatalog(dsn string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if dsn != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS backups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			suite_id TEXT NOT NULL,
			stamp DATETIME NOT NULL,
			path TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backups_suite ON backups(suite_id)`,
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate catalog: %w", err)
		}
	}

	return &Catalog{db: db}, nil
}

// Record stores one archive entry.
func (c *Catalog) Record(ctx context.Context, e *BackupEntry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO backups (suite_id, stamp, path, created_at) VALUES (?, ?, ?, ?)`,
		e.SuiteID, e.Stamp.UTC(), e.Path, createdAt)
	if err != nil {
		return fmt.Errorf("record backup: %w", err)
	}
	return nil
}

// List returns archive entries ordered by stamp, oldest first. An empty
// suiteID lists entries for all suites.
func (c *Catalog) List(ctx context.Context, suiteID string) ([]*BackupEntry, error) {
	query := `SELECT suite_id, stamp, path, created_at FROM backups`
	args := []any{}
	if suiteID != "" {
		query += ` WHERE suite_id = ?`
		args = append(args, suiteID)
	}
	query += ` ORDER BY stamp ASC, id ASC`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var entries []*BackupEntry
	for rows.Next() {
		e := &BackupEntry{}
		if err := rows.Scan(&e.SuiteID, &e.Stamp, &e.Path, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return entries, nil
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
