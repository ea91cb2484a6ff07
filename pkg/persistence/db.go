// Package persistence keeps a local SQLite journal of task executions.
// The Notion workspace remains the source of truth; the journal is an audit trail.
package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"aeosinnotion/pkg/logx"
)

// Journal records runs and their steps.
type Journal struct {
	db        *sql.DB
	sessionID string
	logger    *logx.Logger
}

// Open opens (creating if needed) the journal at dbPath and brings its schema up to date.
// sessionID tags every run recorded by this process.
func Open(dbPath, sessionID string) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		dbPath,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initializeSchemaWithMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	j := &Journal{db: db, sessionID: sessionID, logger: logx.NewLogger("persistence")}
	j.logger.Info("📦 Journal initialized: %s (session: %s)", dbPath, sessionID)
	return j, nil
}

// SessionID returns the session tag of this journal.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
