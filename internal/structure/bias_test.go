package structure

import (
	"testing"

	"StructureSentinel/internal/model"
)

func bullishBreakAt(i int) *model.BreakEvent {
	return &model.BreakEvent{Kind: model.BullishBreak, Level: 100.5, BreakPrice: 103, At: at(i)}
}

func closedBar(i int, c float64) model.OHLCV {
	return model.OHLCV{Time: at(i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c}
}

func hasTransition(ts []model.Transition, want model.Transition) bool {
	for _, t := range ts {
		if t == want {
			return true
		}
	}
	return false
}

func TestStep_InitializesFromExternal(t *testing.T) {
	var st model.SymbolState
	ts := step(&st, stepInput{External: model.DirectionBearish, Internal: model.DirectionBullish, Confirmed: closedBar(1, 100)})
	if st.Bias != model.BiasBearish {
		t.Fatalf("expected bearish bias, got %s", st.Bias)
	}
	if st.AwaitingPullback {
		t.Error("fresh state must not await a pullback")
	}
	if !hasTransition(ts, model.TransitionInitialized) {
		t.Errorf("expected initialized transition, got %v", ts)
	}

	ts = step(&st, stepInput{External: model.DirectionBullish, Internal: model.DirectionBullish, Confirmed: closedBar(2, 100)})
	if st.Bias != model.BiasBearish || len(ts) != 0 {
		t.Fatalf("external reading must not reassign bias: bias=%s transitions=%v", st.Bias, ts)
	}
}

func TestStep_BreakWithoutPullbackKeepsBias(t *testing.T) {
	st := model.SymbolState{Bias: model.BiasBearish}
	ts := step(&st, stepInput{Internal: model.DirectionBullish, Break: bullishBreakAt(10), Confirmed: closedBar(10, 103)})
	if !hasTransition(ts, model.TransitionBreakRegistered) {
		t.Fatalf("expected break registration, got %v", ts)
	}
	if st.Bias != model.BiasBearish || !st.AwaitingPullback || st.PendingBreak == nil {
		t.Fatalf("unexpected state after break: %+v", st)
	}

	readings := []model.Direction{model.DirectionBullish, model.DirectionNeutral, model.DirectionBullish}
	for i, d := range readings {
		step(&st, stepInput{Internal: d, Confirmed: closedBar(11+i, 104)})
		if st.Bias != model.BiasBearish {
			t.Fatalf("reading %d: bias changed to %s without pullback", i, st.Bias)
		}
		if !st.AwaitingPullback {
			t.Fatalf("reading %d: pullback wait cleared", i)
		}
	}
}

func TestStep_PullbackConfirmsBias(t *testing.T) {
	st := model.SymbolState{Bias: model.BiasNeutral}
	step(&st, stepInput{Internal: model.DirectionNeutral, Break: bullishBreakAt(10), Confirmed: closedBar(10, 103)})

	// pullback that loses the level does not confirm
	step(&st, stepInput{Internal: model.DirectionBearish, Confirmed: closedBar(11, 100.4)})
	if st.Bias != model.BiasNeutral || !st.AwaitingPullback {
		t.Fatalf("close below level must not confirm: %+v", st)
	}

	ts := step(&st, stepInput{Internal: model.DirectionBearish, Confirmed: closedBar(12, 101.5)})
	if !hasTransition(ts, model.TransitionBiasConfirmed) {
		t.Fatalf("expected confirmation, got %v", ts)
	}
	if st.Bias != model.BiasBullish || st.AwaitingPullback || st.PendingBreak != nil {
		t.Fatalf("unexpected state after confirmation: %+v", st)
	}
}

func TestStep_BearishPullbackConfirmsBias(t *testing.T) {
	st := model.SymbolState{Bias: model.BiasBullish}
	brk := &model.BreakEvent{Kind: model.BearishBreak, Level: 99.5, BreakPrice: 97, At: at(5)}
	step(&st, stepInput{Internal: model.DirectionBearish, Break: brk, Confirmed: closedBar(5, 97)})
	step(&st, stepInput{Internal: model.DirectionBullish, Confirmed: closedBar(6, 98)})
	if st.Bias != model.BiasBearish || st.AwaitingPullback {
		t.Fatalf("expected confirmed bearish bias, got %+v", st)
	}
}

func TestStep_NoConfirmationOnBreakBar(t *testing.T) {
	st := model.SymbolState{Bias: model.BiasNeutral}
	in := stepInput{Internal: model.DirectionBearish, Break: bullishBreakAt(10), Confirmed: closedBar(10, 103)}
	step(&st, in)
	ts := step(&st, in)
	if len(ts) != 0 {
		t.Fatalf("replaying the break bar must be a no-op, got %v", ts)
	}
	if st.Bias != model.BiasNeutral || !st.AwaitingPullback {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestStep_NewBreakSupersedesPending(t *testing.T) {
	st := model.SymbolState{Bias: model.BiasNeutral}
	step(&st, stepInput{Internal: model.DirectionNeutral, Break: bullishBreakAt(10), Confirmed: closedBar(10, 103)})

	bearish := &model.BreakEvent{Kind: model.BearishBreak, Level: 99, BreakPrice: 97, At: at(14)}
	ts := step(&st, stepInput{Internal: model.DirectionNeutral, Break: bearish, Confirmed: closedBar(14, 97)})
	if !hasTransition(ts, model.TransitionBreakSuperseded) {
		t.Fatalf("expected supersede, got %v", ts)
	}
	if st.PendingBreak == nil || st.PendingBreak.Kind != model.BearishBreak || !st.LastBreakAt.Equal(at(14)) {
		t.Fatalf("expected bearish pending break, got %+v", st.PendingBreak)
	}

	// the bullish confirmation rule no longer applies
	step(&st, stepInput{Internal: model.DirectionBearish, Confirmed: closedBar(15, 101)})
	if st.Bias != model.BiasNeutral {
		t.Fatalf("superseded break must not confirm, bias=%s", st.Bias)
	}
}

func TestStep_PendingBreakIsCopied(t *testing.T) {
	st := model.SymbolState{Bias: model.BiasNeutral}
	brk := bullishBreakAt(3)
	step(&st, stepInput{Break: brk, Confirmed: closedBar(3, 103)})
	brk.Level = 0
	if st.PendingBreak.Level != 100.5 {
		t.Fatalf("state aliases caller's break event")
	}
}

func TestClassifyState(t *testing.T) {
	bull := &model.BreakEvent{Kind: model.BullishBreak}
	bear := &model.BreakEvent{Kind: model.BearishBreak}
	tests := []struct {
		bias     model.Bias
		brk      *model.BreakEvent
		internal model.Direction
		want     model.StateLabel
	}{
		{model.BiasBullish, bull, model.DirectionBullish, model.StateBullishExpansion},
		{model.BiasBullish, nil, model.DirectionBearish, model.StateBullishCorrection},
		{model.BiasBullish, nil, model.DirectionNeutral, model.StateBullishExpansion},
		{model.BiasBullish, bear, model.DirectionBearish, model.StateBullishExpansion},
		{model.BiasBearish, bear, model.DirectionBearish, model.StateBearishExpansion},
		{model.BiasBearish, nil, model.DirectionBullish, model.StateBearishCorrection},
		{model.BiasBearish, nil, model.DirectionNeutral, model.StateBearishExpansion},
		{model.BiasNeutral, nil, model.DirectionBullish, model.StateTransition},
		{model.BiasNeutral, bull, model.DirectionBearish, model.StateTransition},
		{model.BiasNeutral, nil, model.DirectionNeutral, model.StateDistribution},
		{model.BiasUnset, nil, model.DirectionNeutral, model.StateDistribution},
	}
	for _, tt := range tests {
		if got := classifyState(tt.bias, tt.brk, tt.internal); got != tt.want {
			t.Errorf("classifyState(%s, %v, %s) = %s, want %s", tt.bias, tt.brk, tt.internal, got, tt.want)
		}
	}
}
