package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"StructureSentinel/internal/model"
)

// journal holds the SQL shared by the SQLite and PostgreSQL recorders.
// Queries are written with ? placeholders and rebound per dialect.
type journal struct {
	db     *sql.DB
	mu     sync.Mutex
	dollar bool // PostgreSQL-style $n placeholders
}

func (j *journal) rebind(q string) string {
	if !j.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (j *journal) migrate(idColumn string) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id                 ` + idColumn + `,
			cycle_id           TEXT NOT NULL,
			recorded_at        BIGINT NOT NULL,
			symbol             TEXT NOT NULL,
			timeframe          TEXT,
			confirmed_at       BIGINT,
			external_direction TEXT,
			internal_direction TEXT,
			bias               TEXT,
			state              TEXT,
			momentum           INTEGER,
			break_kind         TEXT,
			break_level        REAL,
			break_price        REAL,
			pending_kind       TEXT,
			pending_level      REAL,
			awaiting_pullback  BOOLEAN,
			insufficient       BOOLEAN
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_symbol_ts ON evaluations(symbol, timeframe, confirmed_at)`,

		`CREATE TABLE IF NOT EXISTS transitions (
			id          ` + idColumn + `,
			cycle_id    TEXT NOT NULL,
			recorded_at BIGINT NOT NULL,
			symbol      TEXT NOT NULL,
			timeframe   TEXT,
			kind        TEXT NOT NULL,
			bias        TEXT,
			break_kind  TEXT,
			break_level REAL,
			bar_at      BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transition_symbol_ts ON transitions(symbol, timeframe, bar_at)`,
	}

	for _, s := range stmts {
		if _, err := j.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// breakCols flattens an optional break into nullable columns.
func breakCols(b *model.BreakEvent) (kind sql.NullString, level sql.NullFloat64, price sql.NullFloat64) {
	if b == nil {
		return
	}
	return sql.NullString{String: string(b.Kind), Valid: true},
		sql.NullFloat64{Float64: b.Level, Valid: true},
		sql.NullFloat64{Float64: b.BreakPrice, Valid: true}
}

func unixOrNull(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func (j *journal) RecordEvaluation(rec *EvaluationRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := rec.Snapshot
	bKind, bLevel, bPrice := breakCols(s.Break)
	pKind, pLevel, _ := breakCols(s.PendingBreak)

	_, err := j.db.Exec(j.rebind(`INSERT INTO evaluations
		(cycle_id, recorded_at, symbol, timeframe, confirmed_at,
		 external_direction, internal_direction, bias, state, momentum,
		 break_kind, break_level, break_price, pending_kind, pending_level,
		 awaiting_pullback, insufficient)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		rec.CycleID, time.Now().Unix(), s.Symbol, string(s.Timeframe), unixOrNull(s.ConfirmedAt),
		string(s.ExternalDirection), string(s.InternalDirection), string(s.Bias), string(s.State), s.Momentum,
		bKind, bLevel, bPrice, pKind, pLevel,
		s.AwaitingPullback, s.Insufficient,
	)
	return err
}

func (j *journal) RecordTransition(rec *TransitionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	bKind, bLevel, _ := breakCols(rec.Break)
	_, err := j.db.Exec(j.rebind(`INSERT INTO transitions
		(cycle_id, recorded_at, symbol, timeframe, kind, bias, break_kind, break_level, bar_at)
		VALUES (?,?,?,?,?,?,?,?,?)`),
		rec.CycleID, time.Now().Unix(), rec.Symbol, string(rec.Timeframe),
		string(rec.Transition), string(rec.Bias), bKind, bLevel, unixOrNull(rec.At),
	)
	return err
}
