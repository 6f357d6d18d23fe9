package structure

import (
	"fmt"

	"github.com/rs/zerolog"

	"StructureSentinel/internal/logging"
	"StructureSentinel/internal/model"
)

// Engine turns bar windows into structure snapshots and keeps the per-symbol
// bias memory between calls. It is safe for concurrent use; evaluations of the
// same symbol are serialized.
type Engine struct {
	store  *StateStore
	logger zerolog.Logger
}

// NewEngine creates an engine with empty state.
func NewEngine() *Engine {
	return &Engine{
		store:  NewStateStore(),
		logger: logging.Component("structure"),
	}
}

// WithLogger replaces the engine logger.
func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	e.logger = l
	return e
}

// Reset clears the state of one symbol, e.g. before replaying history.
func (e *Engine) Reset(symbol string) { e.store.Reset(symbol) }

// ResetAll clears the state of every symbol.
func (e *Engine) ResetAll() { e.store.ResetAll() }

// State returns a copy of the symbol's persisted state.
func (e *Engine) State(symbol string) (model.SymbolState, bool) { return e.store.Get(symbol) }

// Symbols lists symbols with state.
func (e *Engine) Symbols() []string { return e.store.Symbols() }

// Evaluate classifies the structure of bars for symbol and advances its bias
// state. A window too short for the configured lookbacks yields a neutral
// snapshot with Insufficient set and leaves state untouched.
func (e *Engine) Evaluate(symbol string, bars []model.OHLCV, p Params) (*model.StructureSnapshot, error) {
	if symbol == "" {
		return nil, ErrMissingSymbol
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", symbol, err)
	}

	snap := &model.StructureSnapshot{
		Symbol:            symbol,
		ExternalDirection: model.DirectionNeutral,
		InternalDirection: model.DirectionNeutral,
	}

	if len(bars) < p.MinBars() {
		st, _ := e.store.Get(symbol)
		snap.Insufficient = true
		snap.Bias = st.Bias
		snap.PendingBreak = st.PendingBreak
		snap.AwaitingPullback = st.AwaitingPullback
		snap.State = classifyState(st.Bias, nil, model.DirectionNeutral)
		if n := len(bars); n >= 2 {
			snap.ConfirmedAt = bars[n-2].Time
		}
		return snap, nil
	}

	confirmed := bars[len(bars)-2]

	external := Alternate(DetectSwings(bars, p.ExternalLookback, p.Tolerance))
	internal := Alternate(DetectSwings(bars, p.InternalLookback, p.Tolerance))

	brk := DetectBreak(bars, internal, p.breakParams())
	if brk != nil {
		internal = compressAfterBreak(internal, brk, confirmed)
	}

	snap.ExternalDirection = ClassifyDirection(external, p.Tolerance)
	snap.InternalDirection = ClassifyDirection(internal, p.Tolerance)
	snap.Momentum = MomentumScore(internal)
	snap.Break = brk
	snap.ExternalSwings = external
	snap.InternalSwings = internal
	snap.ConfirmedAt = confirmed.Time

	entry := e.store.acquire(symbol)
	snap.Transitions = step(&entry.state, stepInput{
		External:  snap.ExternalDirection,
		Internal:  snap.InternalDirection,
		Break:     brk,
		Confirmed: confirmed,
	})
	st := copyState(entry.state)
	entry.mu.Unlock()

	snap.Bias = st.Bias
	snap.PendingBreak = st.PendingBreak
	snap.AwaitingPullback = st.AwaitingPullback
	snap.State = classifyState(st.Bias, brk, snap.InternalDirection)

	e.logTransitions(snap)
	return snap, nil
}

func (e *Engine) logTransitions(snap *model.StructureSnapshot) {
	for _, t := range snap.Transitions {
		ev := e.logger.Debug()
		if t == model.TransitionBiasConfirmed {
			ev = e.logger.Info()
		}
		ev.Str("symbol", snap.Symbol).
			Str("transition", string(t)).
			Str("bias", string(snap.Bias)).
			Time("confirmed_at", snap.ConfirmedAt).
			Msg("structure state changed")
	}
}
