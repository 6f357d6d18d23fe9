package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"StructureSentinel/internal/logging"
	"StructureSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a bar API that serves
// GET {base}/api/v1/bars?symbol=&timeframe=&limit= as a JSON array.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	HTTP    *HTTPClient
}

// NewRESTFetcher creates a new REST bar fetcher.
func NewRESTFetcher(baseURL, apiKey string, client *HTTPClient) *RESTFetcher {
	return &RESTFetcher{BaseURL: baseURL, APIKey: apiKey, HTTP: client}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchBars requests tf directly; a 4h request the API rejects with 404 falls
// back to aggregating 1h bars.
func (f *RESTFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error) {
	bars, err := f.fetchBars(ctx, symbol, tf, count)
	if err == nil || tf != model.TF4h {
		return bars, err
	}
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusNotFound {
		return nil, err
	}
	logger := logging.Component("collector")
	logger.Debug().Str("symbol", symbol).Msg("4h bars unavailable, aggregating 1h")
	hourly, hErr := f.fetchBars(ctx, symbol, model.TF1h, count*4+4)
	if hErr != nil {
		return nil, fmt.Errorf("4h fetch failed: %w; 1h fallback also failed: %w", err, hErr)
	}
	return tail(Aggregate(hourly, model.TF4h), count), nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", tf.String())
	q.Set("limit", fmt.Sprint(count))
	endpoint := fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, q.Encode())

	header := http.Header{}
	if f.APIKey != "" {
		header.Set("Authorization", "Bearer "+f.APIKey)
	}
	body, err := f.HTTP.Get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	var raw []restBar
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	return EnsureSorted(bars), nil
}
