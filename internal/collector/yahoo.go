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

	"golang.org/x/time/rate"

	"OptionsSentinel/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	Client    *http.Client
	BaseURL   string            // defaults to https://query2.finance.yahoo.com
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	limiter   *rate.Limiter
}

// NewYahooFetcher creates a Yahoo fetcher with optional proxy support,
// limited to rps requests per second.
func NewYahooFetcher(proxyURL string, rps float64) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if rps <= 0 {
		rps = 2
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query2.finance.yahoo.com",
		SymbolMap: map[string]string{
			"SPX":    "^GSPC",
			"SPX500": "^GSPC",
			"VIX":    "^VIX",
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 4),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooOptions is the response structure from the options API.
type yahooOptions struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []yahooContract `json:"calls"`
				Puts           []yahooContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"optionChain"`
}

type yahooContract struct {
	Strike            interface{} `json:"strike"`
	LastPrice         interface{} `json:"lastPrice"`
	Volume            interface{} `json:"volume"`
	OpenInterest      interface{} `json:"openInterest"`
	ImpliedVolatility interface{} `json:"impliedVolatility"`
}

// yahooCalendar is the response structure from quoteSummary?modules=calendarEvents.
type yahooCalendar struct {
	QuoteSummary struct {
		Result []struct {
			CalendarEvents struct {
				Earnings struct {
					EarningsDate []struct {
						Raw int64 `json:"raw"`
					} `json:"earningsDate"`
				} `json:"earnings"`
			} `json:"calendarEvents"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// toFloat accepts both bare numbers and {"raw": n} wrappers; nulls become 0.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case map[string]interface{}:
		return toFloat(n["raw"])
	default:
		return 0
	}
}

func (f *YahooFetcher) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("yahoo rate limit: %w", err)
		}
	}
	u := f.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol, rng, interval string) ([]model.OHLCV, error) {
	var chart yahooChart
	path := "/v8/finance/chart/" + url.PathEscape(f.yahooSymbol(symbol))
	if err := f.get(ctx, path, url.Values{"range": {rng}, "interval": {interval}}, &chart); err != nil {
		return nil, err
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
	at := func(col []interface{}, i int) float64 {
		if i < len(col) {
			return toFloat(col[i])
		}
		return 0
	}

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == 0 {
			continue // null bar (halt, pre-market gap)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return dedupeBars(bars), nil
}

// dedupeBars keeps the last bar for each timestamp so times strictly increase.
func dedupeBars(bars []model.OHLCV) []model.OHLCV {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func (f *YahooFetcher) FetchOptions(ctx context.Context, symbol string) (*model.OptionsChain, error) {
	var resp yahooOptions
	path := "/v7/finance/options/" + url.PathEscape(f.yahooSymbol(symbol))
	if err := f.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return nil, fmt.Errorf("yahoo: no option chain for %s", symbol)
	}

	nearest := resp.OptionChain.Result[0].Options[0]
	return &model.OptionsChain{
		Calls:  convertContracts(nearest.Calls),
		Puts:   convertContracts(nearest.Puts),
		Expiry: time.Unix(nearest.ExpirationDate, 0).UTC().Format("2006-01-02"),
	}, nil
}

func convertContracts(in []yahooContract) []model.OptionContract {
	out := make([]model.OptionContract, 0, len(in))
	for _, c := range in {
		out = append(out, model.OptionContract{
			Strike:            toFloat(c.Strike),
			LastPrice:         toFloat(c.LastPrice),
			Volume:            toFloat(c.Volume),
			OpenInterest:      toFloat(c.OpenInterest),
			ImpliedVolatility: toFloat(c.ImpliedVolatility),
		})
	}
	return out
}

func (f *YahooFetcher) FetchEarningsDate(ctx context.Context, symbol string) (time.Time, error) {
	var resp yahooCalendar
	path := "/v10/finance/quoteSummary/" + url.PathEscape(f.yahooSymbol(symbol))
	if err := f.get(ctx, path, url.Values{"modules": {"calendarEvents"}}, &resp); err != nil {
		return time.Time{}, err
	}
	if resp.QuoteSummary.Error != nil {
		return time.Time{}, fmt.Errorf("yahoo api error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return time.Time{}, ErrNoEarningsDate
	}
	dates := resp.QuoteSummary.Result[0].CalendarEvents.Earnings.EarningsDate
	if len(dates) == 0 || dates[0].Raw == 0 {
		return time.Time{}, ErrNoEarningsDate
	}
	return time.Unix(dates[0].Raw, 0), nil
}
