package structure

import "StructureSentinel/internal/model"

// stepInput is what one evaluation feeds into a symbol's bias machine.
type stepInput struct {
	External  model.Direction
	Internal  model.Direction
	Break     *model.BreakEvent
	Confirmed model.OHLCV
}

// step advances a symbol's state. Bias is seeded once from the external
// reading and afterwards only changes when a pending break is followed by an
// internal pullback that holds beyond the broken level.
func step(st *model.SymbolState, in stepInput) []model.Transition {
	var ts []model.Transition

	if st.Bias == "" || st.Bias == model.BiasUnset {
		st.Bias = model.BiasFromDirection(in.External)
		st.AwaitingPullback = false
		st.PendingBreak = nil
		ts = append(ts, model.TransitionInitialized)
	}

	if st.AwaitingPullback && st.PendingBreak != nil && in.Confirmed.Time.After(st.PendingBreak.At) {
		if pullbackHolds(st.PendingBreak, in.Internal, in.Confirmed.Close) {
			st.Bias = biasOf(st.PendingBreak.Kind)
			st.PendingBreak = nil
			st.AwaitingPullback = false
			ts = append(ts, model.TransitionBiasConfirmed)
		}
	}

	if in.Break != nil && in.Break.At.After(st.LastBreakAt) {
		t := model.TransitionBreakRegistered
		if st.AwaitingPullback && st.PendingBreak != nil {
			t = model.TransitionBreakSuperseded
		}
		ev := *in.Break
		st.PendingBreak = &ev
		st.AwaitingPullback = true
		st.LastBreakAt = ev.At
		ts = append(ts, t)
	}
	return ts
}

func pullbackHolds(pending *model.BreakEvent, internal model.Direction, lastClose float64) bool {
	switch pending.Kind {
	case model.BullishBreak:
		return internal == model.DirectionBearish && lastClose > pending.Level
	case model.BearishBreak:
		return internal == model.DirectionBullish && lastClose < pending.Level
	}
	return false
}

func biasOf(k model.BreakKind) model.Bias {
	if k == model.BullishBreak {
		return model.BiasBullish
	}
	return model.BiasBearish
}

// classifyState maps (bias, break, internal direction) onto a state label.
func classifyState(bias model.Bias, brk *model.BreakEvent, internal model.Direction) model.StateLabel {
	switch bias {
	case model.BiasBullish:
		if brk == nil && internal == model.DirectionBearish {
			return model.StateBullishCorrection
		}
		return model.StateBullishExpansion
	case model.BiasBearish:
		if brk == nil && internal == model.DirectionBullish {
			return model.StateBearishCorrection
		}
		return model.StateBearishExpansion
	}
	if internal != model.DirectionNeutral {
		return model.StateTransition
	}
	return model.StateDistribution
}
