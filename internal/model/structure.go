package model

import "time"

// SwingKind marks a swing as a local high or low.
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// Swing is a local price extreme. Values are immutable once produced.
type Swing struct {
	Time  time.Time
	Price float64
	Kind  SwingKind
}

// Direction is an instantaneous structural reading.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Bias is the persisted, confirmed direction of a symbol.
type Bias string

const (
	BiasUnset   Bias = "unset"
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// BiasFromDirection maps a direction reading onto the bias domain.
func BiasFromDirection(d Direction) Bias {
	switch d {
	case DirectionBullish:
		return BiasBullish
	case DirectionBearish:
		return BiasBearish
	default:
		return BiasNeutral
	}
}

// BreakKind distinguishes upward and downward breaks of structure.
type BreakKind string

const (
	BullishBreak BreakKind = "bullish_break"
	BearishBreak BreakKind = "bearish_break"
)

// BreakEvent is a displacement-confirmed break of structure.
type BreakEvent struct {
	Kind       BreakKind
	Level      float64   // swing price that was broken
	BreakPrice float64   // close of the confirming bar
	At         time.Time // time of the confirming bar
}

// Same reports whether two events describe the same break.
func (e BreakEvent) Same(o BreakEvent) bool {
	return e.Kind == o.Kind && e.At.Equal(o.At) && e.Level == o.Level
}

// StateLabel is the structural state reported for a snapshot.
type StateLabel string

const (
	StateBullishExpansion  StateLabel = "bullish_expansion"
	StateBullishCorrection StateLabel = "bullish_correction"
	StateBearishExpansion  StateLabel = "bearish_expansion"
	StateBearishCorrection StateLabel = "bearish_correction"
	StateTransition        StateLabel = "transition"
	StateDistribution      StateLabel = "distribution"
)

// Transition names what happened to a symbol's state during one evaluation.
type Transition string

const (
	TransitionInitialized     Transition = "initialized"
	TransitionBreakRegistered Transition = "break_registered"
	TransitionBreakSuperseded Transition = "break_superseded"
	TransitionBiasConfirmed   Transition = "bias_confirmed"
)

// SymbolState is the persistent structure memory of one symbol.
type SymbolState struct {
	Bias             Bias
	PendingBreak     *BreakEvent
	AwaitingPullback bool
	LastBreakAt      time.Time
}

// StructureSnapshot is the result of one engine evaluation.
type StructureSnapshot struct {
	Symbol    string
	Timeframe Timeframe

	ExternalDirection Direction
	InternalDirection Direction
	Bias              Bias
	State             StateLabel

	Break            *BreakEvent
	PendingBreak     *BreakEvent
	AwaitingPullback bool
	Transitions      []Transition
	Momentum         int

	ExternalSwings []Swing
	InternalSwings []Swing

	ConfirmedAt  time.Time
	Insufficient bool
}
