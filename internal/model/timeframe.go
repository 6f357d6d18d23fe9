package model

import (
	"strings"
	"time"
)

// Timeframe is a bar interval such as "15m" or "4h".
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
	TF1w  Timeframe = "1w"
)

func (tf Timeframe) String() string { return string(tf) }

// ParseTimeframe accepts both "15m" and terminal-style "M15" spellings.
func ParseTimeframe(s string) (Timeframe, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1m", "m1":
		return TF1m, true
	case "5m", "m5":
		return TF5m, true
	case "15m", "m15":
		return TF15m, true
	case "30m", "m30":
		return TF30m, true
	case "1h", "h1", "60m":
		return TF1h, true
	case "4h", "h4":
		return TF4h, true
	case "1d", "d1", "day", "daily":
		return TF1d, true
	case "1w", "w1", "1wk", "week", "weekly":
		return TF1w, true
	default:
		return Timeframe(""), false
	}
}

// Duration returns the nominal length of one bar.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TF1m:
		return time.Minute
	case TF5m:
		return 5 * time.Minute
	case TF15m:
		return 15 * time.Minute
	case TF30m:
		return 30 * time.Minute
	case TF1h:
		return time.Hour
	case TF4h:
		return 4 * time.Hour
	case TF1d:
		return 24 * time.Hour
	case TF1w:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Rank orders timeframes; a larger rank is a higher timeframe.
func (tf Timeframe) Rank() int {
	return int(tf.Duration() / time.Minute)
}

// Align truncates t down to the start of its tf bucket in UTC.
// Weekly buckets start on Monday.
func (tf Timeframe) Align(t time.Time) time.Time {
	tt := t.UTC()
	switch tf {
	case TF1d:
		y, m, d := tt.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case TF1w:
		y, m, d := tt.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		d := tf.Duration()
		if d <= 0 {
			return tt
		}
		return tt.Truncate(d)
	}
}
