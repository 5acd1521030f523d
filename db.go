// db.go
//
// Database helpers for the round journal.
// Responsibilities:
//   - Opening SQLite (default) or PostgreSQL depending on DATABASE_URL.
//   - SQLite gets safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations from assets/sql/*.sql (idempotent, recorded in _migrations).

package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/assets"
	"github.com/robalobadob/numberguess/internal/journal"
)

// openDB opens the journal database named by dsn.
//
//   - postgres:// URLs use lib/pq.
//   - Anything else is a SQLite path; the parent directory is created and
//     busy timeout + WAL journaling are configured.
func openDB(dsn string) (*sql.DB, journal.Dialect, error) {
	driver, dialect := journal.DialectFor(dsn)
	if dialect == journal.Postgres {
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, dialect, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, dialect, fmt.Errorf("ping postgres: %w", err)
		}
		log.Info().Msg("connected to PostgreSQL")
		return db, dialect, nil
	}

	// Ensure directory exists for ./data/app.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, dialect, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// Open DB with busy timeout and WAL journaling.
	db, err := sql.Open(driver, dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, dialect, err
	}

	// Explicitly enforce foreign keys + WAL.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, dialect, fmt.Errorf("set pragmas: %w", err)
	}
	log.Info().Str("path", dsn).Msg("opened SQLite")
	return db, dialect, nil
}

// migrate applies the embedded SQL migrations.
//
//   - Uses a _migrations table to track applied files.
//   - Executes each *.sql file in lexical order, each in its own transaction.
//   - Skips files already applied.
func migrate(db *sql.DB, dialect journal.Dialect) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	migrations := assets.Migrations()
	var files []string
	if err := fs.WalkDir(migrations, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		// Skip if already applied
		var done int
		err := db.QueryRow(dialect.Rebind(`SELECT 1 FROM _migrations WHERE name=?`), f).Scan(&done)
		if err == nil {
			log.Info().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(migrations, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(dialect.Rebind(`INSERT INTO _migrations(name) VALUES (?)`), f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}
