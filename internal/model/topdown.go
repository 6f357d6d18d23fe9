package model

// Trade contexts of a top-down summary.
const (
	ContextAligned = "aligned"
	ContextMixed   = "mixed"
	ContextNoBias  = "no_bias"
)

// TopdownSummary aggregates one symbol's snapshots across timeframes.
type TopdownSummary struct {
	Symbol            string
	Snapshots         []*StructureSnapshot // highest timeframe first
	DominantBias      Bias
	DominantTimeframe Timeframe
	AlignmentScore    int
	TradeContext      string
	TradeAllowed      bool
}
