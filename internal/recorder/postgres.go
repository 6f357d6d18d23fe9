package recorder

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"StructureSentinel/internal/logging"
)

// PostgresRecorder journals engine output to PostgreSQL.
type PostgresRecorder struct {
	journal
}

// NewPostgresRecorder connects with a lib/pq DSN and runs migrations.
func NewPostgresRecorder(dsn string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{journal: journal{db: db, dollar: true}}
	if err := r.migrate("BIGSERIAL PRIMARY KEY"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger := logging.Component("recorder")
	logger.Info().Msg("postgres recorder opened")
	return r, nil
}

func (r *PostgresRecorder) Close() error {
	logger := logging.Component("recorder")
	logger.Info().Msg("closing postgres recorder")
	return r.db.Close()
}
