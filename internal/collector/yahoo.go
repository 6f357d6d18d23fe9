package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"StructureSentinel/internal/model"
)

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	HTTP      *HTTPClient
	BaseURL   string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(client *HTTPClient) *YahooFetcher {
	return &YahooFetcher{
		HTTP:    client,
		BaseURL: "https://query1.finance.yahoo.com",
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"NAS100": "^NDX",
			"XAUUSD": "GC=F",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	if len(symbol) == 6 {
		// bare FX pairs are quoted as EURUSD=X
		return symbol + "=X"
	}
	return symbol
}

// yahooInterval maps a timeframe to the chart API interval, the interval to
// request when Yahoo has no native equivalent, and a covering range.
func yahooInterval(tf model.Timeframe) (interval string, source model.Timeframe, rng string, err error) {
	switch tf {
	case model.TF1m:
		return "1m", tf, "5d", nil
	case model.TF5m:
		return "5m", tf, "1mo", nil
	case model.TF15m:
		return "15m", tf, "1mo", nil
	case model.TF30m:
		return "30m", tf, "1mo", nil
	case model.TF1h:
		return "60m", tf, "3mo", nil
	case model.TF4h:
		return "60m", model.TF1h, "6mo", nil
	case model.TF1d:
		return "1d", tf, "2y", nil
	case model.TF1w:
		return "1wk", tf, "10y", nil
	}
	return "", "", "", fmt.Errorf("yahoo: unsupported timeframe %q", tf)
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func deref(vs []*float64, i int) float64 {
	v, _ := value(vs, i)
	return v
}

func value(vs []*float64, i int) (float64, bool) {
	if i >= len(vs) || vs[i] == nil {
		return 0, false
	}
	return *vs[i], true
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	body, err := f.HTTP.Get(ctx, u, http.Header{"User-Agent": []string{"Mozilla/5.0"}})
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, okO := value(quote.Open, i)
		h, okH := value(quote.High, i)
		l, okL := value(quote.Low, i)
		c, okC := value(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue // skip bars with any null price (holidays, partial prints)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: deref(quote.Volume, i),
		})
	}
	return EnsureSorted(bars), nil
}

func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error) {
	interval, source, rng, err := yahooInterval(tf)
	if err != nil {
		return nil, err
	}
	bars, err := f.fetchChart(ctx, symbol, interval, rng)
	if err != nil {
		return nil, err
	}
	if source != tf {
		bars = Aggregate(bars, tf)
	}
	return tail(bars, count), nil
}
