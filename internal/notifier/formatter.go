package notifier

import (
	"fmt"
	"strings"
	"time"

	"StructureSentinel/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func formatBreak(b *model.BreakEvent) string {
	if b == nil {
		return "none"
	}
	return fmt.Sprintf("%s@%.5g (close %.5g, %s)", b.Kind, b.Level, b.BreakPrice, b.At.UTC().Format(timeLayout))
}

// FormatSnapshot renders one engine snapshot on a single line.
func FormatSnapshot(s *model.StructureSnapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s", s.Symbol, s.Timeframe))
	if s.Insufficient {
		b.WriteString(fmt.Sprintf(" | insufficient data | bias %s", s.Bias))
		return b.String()
	}
	b.WriteString(fmt.Sprintf(" | %s | ext %s | int %s | bias %s | mom %+d",
		s.ConfirmedAt.UTC().Format(timeLayout), s.ExternalDirection, s.InternalDirection, s.Bias, s.Momentum))
	b.WriteString(fmt.Sprintf(" | state %s", s.State))
	if s.Break != nil {
		b.WriteString(" | BOS " + formatBreak(s.Break))
	}
	if s.AwaitingPullback {
		b.WriteString(" | awaiting pullback " + formatBreak(s.PendingBreak))
	}
	if len(s.Transitions) > 0 {
		names := make([]string, len(s.Transitions))
		for i, t := range s.Transitions {
			names[i] = string(t)
		}
		b.WriteString(" | " + strings.Join(names, ","))
	}
	return b.String()
}

// FormatReplayLine renders one replay step in the column layout used by the
// replay tool.
func FormatReplayLine(at time.Time, s *model.StructureSnapshot) string {
	bos := "-"
	if s.Break != nil {
		bos = string(s.Break.Kind)
	}
	return fmt.Sprintf("%s | Ext: %-7s | Int: %-7s | BOS: %-13s | Bias: %-7s | State: %s",
		at.UTC().Format(timeLayout), s.ExternalDirection, s.InternalDirection, bos, s.Bias, s.State)
}

// FormatTopdown renders a multi-timeframe summary as a block of lines.
func FormatTopdown(v *model.TopdownSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s top-down | dominant %s | alignment %d/%d | %s",
		v.Symbol, v.DominantBias, v.AlignmentScore, len(v.Snapshots), v.TradeContext))
	if v.TradeAllowed {
		b.WriteString(" | trade allowed")
	}
	for _, s := range v.Snapshots {
		b.WriteString(fmt.Sprintf("\n  %-4s bias %-8s state %s", s.Timeframe, s.Bias, s.State))
	}
	return b.String()
}
