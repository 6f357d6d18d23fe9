package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"StructureSentinel/internal/model"
)

// CSVFetcher serves bars from {Dir}/{SYMBOL}_{tf}.csv files, e.g. EURUSD_4h.csv.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher rooted at dir.
func NewCSVFetcher(dir string) *CSVFetcher { return &CSVFetcher{Dir: dir} }

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchBars(_ context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error) {
	path := filepath.Join(f.Dir, fmt.Sprintf("%s_%s.csv", symbol, tf))
	bars, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return tail(bars, count), nil
}

// LoadCSV reads a bar file with a header row naming at least
// time, open, high, low and close columns (volume optional). Times may be
// RFC3339, "2006-01-02 15:04[:05]", a date, or unix seconds.
func LoadCSV(path string) ([]model.OHLCV, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	bars, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadCSV parses bars from r; see LoadCSV for the format.
func ReadCSV(r io.Reader) ([]model.OHLCV, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := func(names ...string) int {
		for _, n := range names {
			if i, ok := cols[n]; ok {
				return i
			}
		}
		return -1
	}
	ti := idx("time", "timestamp", "date", "datetime")
	oi, hi, li, ci := idx("open", "o"), idx("high", "h"), idx("low", "l"), idx("close", "c")
	vi := idx("volume", "vol", "v", "tick_volume")
	if ti < 0 || oi < 0 || hi < 0 || li < 0 || ci < 0 {
		return nil, fmt.Errorf("header must name time, open, high, low and close columns: %v", header)
	}

	var bars []model.OHLCV
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ts, err := parseTime(rec[ti])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b := model.OHLCV{Time: ts}
		for _, fld := range []struct {
			i   int
			dst *float64
		}{{oi, &b.Open}, {hi, &b.High}, {li, &b.Low}, {ci, &b.Close}, {vi, &b.Volume}} {
			if fld.i < 0 {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[fld.i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			*fld.dst = v
		}
		bars = append(bars, b)
	}
	return EnsureSorted(bars), nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
