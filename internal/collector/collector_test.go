package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"StructureSentinel/internal/model"
)

var base = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func hourly(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.OHLCV{Time: base.Add(time.Duration(i) * time.Hour), Open: p, High: p + 2, Low: p - 1, Close: p + 1, Volume: 10}
	}
	return bars
}

func testClient() *HTTPClient {
	return NewHTTPClient(HTTPOptions{Timeout: 5 * time.Second, RequestsPerSec: 100, MaxElapsedTime: 5 * time.Second})
}

func TestAggregate_FourHourBuckets(t *testing.T) {
	got := Aggregate(hourly(8), model.TF4h)
	if len(got) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(got))
	}
	first := got[0]
	if !first.Time.Equal(base) {
		t.Errorf("first bucket time = %v, want %v", first.Time, base)
	}
	if first.Open != 100 || first.High != 105 || first.Low != 99 || first.Close != 104 || first.Volume != 40 {
		t.Errorf("unexpected first bucket: %+v", first)
	}
	if got[1].Open != 104 || got[1].Close != 108 {
		t.Errorf("unexpected second bucket: %+v", got[1])
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil, model.TF4h); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestEnsureSorted_DoesNotMutateInput(t *testing.T) {
	bars := hourly(3)
	in := []model.OHLCV{bars[2], bars[0], bars[1]}
	got := EnsureSorted(in)
	for i := range got {
		if !got[i].Time.Equal(bars[i].Time) {
			t.Fatalf("bar %d out of order: %v", i, got[i].Time)
		}
	}
	if !in[0].Time.Equal(bars[2].Time) {
		t.Errorf("input slice was reordered")
	}
}

func TestCollector_SortsAndTrims(t *testing.T) {
	bars := hourly(10)
	shuffled := append(append([]model.OHLCV{}, bars[:8]...), bars[9], bars[8])
	mock := &MockFetcher{Data: map[string][]model.OHLCV{"EURUSD@1h": shuffled}}
	c := NewCollector(mock, 4)

	series, err := c.Collect(context.Background(), "EURUSD", model.TF1h)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if series.Symbol != "EURUSD" || series.Timeframe != model.TF1h {
		t.Errorf("unexpected series identity: %s %s", series.Symbol, series.Timeframe)
	}
	if len(series.Bars) != 4 {
		t.Fatalf("expected 4 bars, got %d", len(series.Bars))
	}
	if !series.Bars[3].Time.Equal(bars[9].Time) {
		t.Errorf("last bar = %v, want %v", series.Bars[3].Time, bars[9].Time)
	}
}

type emptyFetcher struct{}

func (emptyFetcher) Name() string { return "empty" }
func (emptyFetcher) FetchBars(context.Context, string, model.Timeframe, int) ([]model.OHLCV, error) {
	return nil, nil
}

func TestCollector_EmptyResponse(t *testing.T) {
	c := NewCollector(emptyFetcher{}, 50)
	if _, err := c.Collect(context.Background(), "EURUSD", model.TF1h); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestMockFetcher_Generated(t *testing.T) {
	m := &MockFetcher{Price: 1.1}
	bars, err := m.FetchBars(context.Background(), "EURUSD", model.TF15m, 30)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 30 {
		t.Fatalf("expected 30 bars, got %d", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Sub(bars[i-1].Time) != 15*time.Minute {
			t.Fatalf("bar %d spacing = %v", i, bars[i].Time.Sub(bars[i-1].Time))
		}
		if bars[i].High < bars[i].Low {
			t.Fatalf("bar %d high below low", i)
		}
	}
}

func TestReadCSV(t *testing.T) {
	data := "time,open,high,low,close,volume\n" +
		"2026-02-02 04:00,1.1010,1.1030,1.1000,1.1020,55\n" +
		"2026-02-02T00:00:00Z,1.1000,1.1020,1.0990,1.1010,40\n"
	bars, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Time.Equal(base) {
		t.Errorf("bars not sorted: first = %v", bars[0].Time)
	}
	if bars[1].Close != 1.1020 || bars[1].Volume != 55 {
		t.Errorf("unexpected second bar: %+v", bars[1])
	}
}

func TestReadCSV_UnixAndNoVolume(t *testing.T) {
	data := fmt.Sprintf("Timestamp,Open,High,Low,Close\n%d,1,2,0.5,1.5\n", base.Unix())
	bars, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(bars) != 1 || !bars[0].Time.Equal(base) || bars[0].Volume != 0 {
		t.Errorf("unexpected bars: %+v", bars)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	cases := map[string]string{
		"missing column": "time,open,high,low\n2026-02-02,1,2,0.5\n",
		"bad number":     "time,open,high,low,close\n2026-02-02,1,x,0.5,1\n",
		"bad time":       "time,open,high,low,close\nyesterday,1,2,0.5,1\n",
		"empty":          "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCSVFetcher(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("time,open,high,low,close\n")
	for _, b := range hourly(6) {
		fmt.Fprintf(&sb, "%s,%g,%g,%g,%g\n", b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close)
	}
	if err := os.WriteFile(filepath.Join(dir, "GBPUSD_1h.csv"), []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewCSVFetcher(dir)
	bars, err := f.FetchBars(context.Background(), "GBPUSD", model.TF1h, 3)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 3 || bars[2].Close != 106 {
		t.Errorf("unexpected bars: %+v", bars)
	}
	if _, err := f.FetchBars(context.Background(), "GBPUSD", model.TF4h, 3); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/bars" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("symbol") != "EURUSD" || q.Get("timeframe") != "1h" || q.Get("limit") != "3" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		var out []restBar
		for _, b := range hourly(3) {
			out = append(out, restBar{Timestamp: b.Time.Unix(), Open: b.Open, High: b.High, Low: b.Low, Close: b.Close})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", testClient())
	bars, err := f.FetchBars(context.Background(), "EURUSD", model.TF1h, 3)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 3 || !bars[0].Time.Equal(base) {
		t.Errorf("unexpected bars: %+v", bars)
	}

	f.APIKey = "wrong"
	_, err = f.FetchBars(context.Background(), "EURUSD", model.TF1h, 3)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 StatusError, got %v", err)
	}
}

func TestRESTFetcher_FourHourFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("timeframe") == "4h" {
			http.NotFound(w, r)
			return
		}
		var out []restBar
		for _, b := range hourly(12) {
			out = append(out, restBar{Timestamp: b.Time.Unix(), Open: b.Open, High: b.High, Low: b.Low, Close: b.Close})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "", testClient())
	bars, err := f.FetchBars(context.Background(), "EURUSD", model.TF4h, 2)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[1].Open != 108 || bars[1].Close != 112 {
		t.Errorf("unexpected aggregated bar: %+v", bars[1])
	}
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("body=%q calls=%d", body, calls)
	}
}

func TestYahooFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/EURUSD=X" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "60m" {
			t.Errorf("unexpected interval %s", r.URL.Query().Get("interval"))
		}
		bars := hourly(8)
		ts := make([]int64, len(bars))
		o, h, l, c := make([]*float64, len(bars)), make([]*float64, len(bars)), make([]*float64, len(bars)), make([]*float64, len(bars))
		for i := range bars {
			ts[i] = bars[i].Time.Unix()
			o[i], h[i], l[i], c[i] = &bars[i].Open, &bars[i].High, &bars[i].Low, &bars[i].Close
		}
		// a null row is skipped
		o[7], h[7], l[7], c[7] = nil, nil, nil, nil
		resp := map[string]any{
			"chart": map[string]any{
				"result": []any{map[string]any{
					"timestamp": ts,
					"indicators": map[string]any{
						"quote": []any{map[string]any{"open": o, "high": h, "low": l, "close": c}},
					},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	f := NewYahooFetcher(testClient())
	f.BaseURL = srv.URL
	bars, err := f.FetchBars(context.Background(), "EURUSD", model.TF4h, 10)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 aggregated bars, got %d", len(bars))
	}
	if bars[1].Close != 107 {
		t.Errorf("second bucket close = %v, want 107", bars[1].Close)
	}
}

func TestYahooFetcher_PartialNullRowSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bars := hourly(4)
		ts := make([]int64, len(bars))
		o, h, l, c := make([]*float64, len(bars)), make([]*float64, len(bars)), make([]*float64, len(bars)), make([]*float64, len(bars))
		for i := range bars {
			ts[i] = bars[i].Time.Unix()
			o[i], h[i], l[i], c[i] = &bars[i].Open, &bars[i].High, &bars[i].Low, &bars[i].Close
		}
		l[1] = nil
		c[2] = nil
		resp := map[string]any{
			"chart": map[string]any{
				"result": []any{map[string]any{
					"timestamp": ts,
					"indicators": map[string]any{
						"quote": []any{map[string]any{"open": o, "high": h, "low": l, "close": c}},
					},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	f := NewYahooFetcher(testClient())
	f.BaseURL = srv.URL
	bars, err := f.FetchBars(context.Background(), "EURUSD", model.TF1h, 10)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 complete bars, got %d", len(bars))
	}
	for _, b := range bars {
		if b.Low == 0 || b.Close == 0 {
			t.Errorf("bar %v carries a zero price: %+v", b.Time, b)
		}
	}
	if bars[0].Open != 100 || bars[1].Open != 103 {
		t.Errorf("unexpected bars kept: %+v", bars)
	}
}
