package recorder

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"StructureSentinel/internal/model"
)

// EvaluationRecord is one engine snapshot produced during a scan cycle or replay run.
type EvaluationRecord struct {
	CycleID  string
	Snapshot *model.StructureSnapshot
}

// TransitionRecord is one bias state change.
type TransitionRecord struct {
	CycleID    string
	Symbol     string
	Timeframe  model.Timeframe
	Transition model.Transition
	Bias       model.Bias
	Break      *model.BreakEvent
	At         time.Time // confirmed bar of the evaluation that caused it
}

// Recorder journals engine output for later analysis. It is write-only; the
// engine never restores state from it.
type Recorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
	RecordTransition(rec *TransitionRecord) error
	Close() error
}

// NewCycleID returns an identifier grouping the rows written by one scan cycle.
func NewCycleID() string { return uuid.NewString() }

// TransitionsOf expands a snapshot into its transition records.
func TransitionsOf(cycleID string, snap *model.StructureSnapshot) []*TransitionRecord {
	out := make([]*TransitionRecord, 0, len(snap.Transitions))
	for _, t := range snap.Transitions {
		brk := snap.PendingBreak
		if t != model.TransitionBreakRegistered && t != model.TransitionBreakSuperseded {
			brk = snap.Break
		}
		out = append(out, &TransitionRecord{
			CycleID:    cycleID,
			Symbol:     snap.Symbol,
			Timeframe:  snap.Timeframe,
			Transition: t,
			Bias:       snap.Bias,
			Break:      brk,
			At:         snap.ConfirmedAt,
		})
	}
	return out
}

// Open returns the recorder for driver: "sqlite", "postgres" or "none".
func Open(driver, dsn string) (Recorder, error) {
	switch driver {
	case "", "none":
		return NewNoopRecorder(), nil
	case "sqlite":
		return NewSQLiteRecorder(dsn)
	case "postgres":
		return NewPostgresRecorder(dsn)
	default:
		return nil, fmt.Errorf("unknown recorder driver %q", driver)
	}
}
