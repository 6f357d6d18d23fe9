package scheduler

import (
	"time"

	"StructureSentinel/internal/model"
	"StructureSentinel/internal/structure"
)

// ReplayOptions controls a bar-by-bar replay.
type ReplayOptions struct {
	Params    structure.Params
	Timeframe model.Timeframe
	// Start is the first window length evaluated. Zero means Params.MinBars().
	Start int
	// From and To bound the returned steps by the time of the window's last
	// bar. Zero values leave that side open. Steps outside the range are still
	// evaluated so the bias state evolves exactly as in live scanning.
	From, To time.Time
}

// ReplayStep is the snapshot produced for the window ending at At.
type ReplayStep struct {
	At       time.Time
	Snapshot *model.StructureSnapshot
}

// Replay resets symbol on engine and evaluates every growing prefix of bars,
// the same windows a live scanner would have seen one bar at a time.
func Replay(engine *structure.Engine, symbol string, bars []model.OHLCV, opts ReplayOptions) ([]ReplayStep, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	start := opts.Start
	if start <= 0 {
		start = opts.Params.MinBars()
	}

	engine.Reset(symbol)
	var steps []ReplayStep
	for i := start; i <= len(bars); i++ {
		snap, err := engine.Evaluate(symbol, bars[:i], opts.Params)
		if err != nil {
			return steps, err
		}
		snap.Timeframe = opts.Timeframe
		at := bars[i-1].Time
		if !opts.From.IsZero() && at.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && at.After(opts.To) {
			continue
		}
		steps = append(steps, ReplayStep{At: at, Snapshot: snap})
	}
	return steps, nil
}
