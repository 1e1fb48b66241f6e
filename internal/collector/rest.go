package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"OptionsSentinel/internal/clock"
	"OptionsSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a JSON market-data backend exposing
// /api/v1/bars, /api/v1/options and /api/v1/earnings.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type restChain struct {
	Expiry string                 `json:"expiry"`
	Calls  []model.OptionContract `json:"calls"`
	Puts   []model.OptionContract `json:"puts"`
}

type restEarnings struct {
	Date string `json:"date"` // YYYY-MM-DD exchange date, empty when none is scheduled
}

func (f *RESTFetcher) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s%s?%s", f.BaseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fetch %s: status %d, body: %s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, symbol, rng, interval string) ([]model.OHLCV, error) {
	var raw []restBar
	q := url.Values{"symbol": {symbol}, "range": {rng}, "interval": {interval}}
	if err := f.getJSON(ctx, "/api/v1/bars", q, &raw); err != nil {
		return nil, err
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	// Ensure chronological order
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return dedupeBars(bars), nil
}

func (f *RESTFetcher) FetchOptions(ctx context.Context, symbol string) (*model.OptionsChain, error) {
	var raw restChain
	if err := f.getJSON(ctx, "/api/v1/options", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return nil, err
	}
	return &model.OptionsChain{Calls: raw.Calls, Puts: raw.Puts, Expiry: raw.Expiry}, nil
}

func (f *RESTFetcher) FetchEarningsDate(ctx context.Context, symbol string) (time.Time, error) {
	var raw restEarnings
	if err := f.getJSON(ctx, "/api/v1/earnings", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return time.Time{}, err
	}
	if raw.Date == "" {
		return time.Time{}, ErrNoEarningsDate
	}
	d, err := time.ParseInLocation("2006-01-02", raw.Date, clock.Eastern)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse earnings date %q: %w", raw.Date, err)
	}
	return d, nil
}
