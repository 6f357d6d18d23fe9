package recorder

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"StructureSentinel/internal/logging"
)

// SQLiteRecorder journals engine output to a SQLite database.
type SQLiteRecorder struct {
	journal
	path string
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the scanner writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{journal: journal{db: db}, path: dbPath}
	if err := r.migrate("INTEGER PRIMARY KEY AUTOINCREMENT"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger := logging.Component("recorder")
	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) Close() error {
	logger := logging.Component("recorder")
	logger.Info().Str("path", r.path).Msg("closing sqlite recorder")
	return r.db.Close()
}
