package marketdata

// client.go: HTTP client for the daily-candle and listing API.
//
// Rate limits stay well under the documented per-key quotas; the limiter
// is shared across the fetch worker pool so parallel preloads cannot
// stampede the API.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

const (
	defaultBaseURL = "https://api.krxdata.io/v1"

	// Documented quota is 20 req/s per key; run at 10 to leave headroom.
	requestsPerSec = 10
	burst          = 5
)

// Client implements ports.BarProvider against the market-data API.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient creates a Client. baseURL falls back to production; apiKey may
// be empty for keyless endpoints.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		http.SetHeader("X-Api-Key", apiKey)
	}
	return &Client{
		http:    http,
		limiter: rate.NewLimiter(requestsPerSec, burst),
	}
}

type candleRow struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Amount float64 `json:"amount"` // traded value; 0 when not provided
}

type candleResponse struct {
	Ticker  string      `json:"ticker"`
	Candles []candleRow `json:"candles"`
}

// FetchDailyBars returns the daily bars for ticker in [from, to],
// ascending by date. Rows with non-positive open or close are dropped
// here so the engine never sees them.
func (c *Client) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]domain.Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("marketdata.FetchDailyBars: rate limiter: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"from": from.Format("2006-01-02"),
			"to":   to.Format("2006-01-02"),
		}).
		Get("/daily/" + ticker)
	if err != nil {
		return nil, fmt.Errorf("marketdata.FetchDailyBars: %s: %w", ticker, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("marketdata.FetchDailyBars: %s: status %d: %s",
			ticker, resp.StatusCode(), resp.String())
	}

	var body candleResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("marketdata.FetchDailyBars: %s: parse: %w", ticker, err)
	}

	bars := make([]domain.Bar, 0, len(body.Candles))
	for _, row := range body.Candles {
		if row.Open <= 0 || row.Close <= 0 {
			continue
		}
		date, err := time.ParseInLocation("2006-01-02", row.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("marketdata.FetchDailyBars: %s: bad date %q: %w", ticker, row.Date, err)
		}
		bars = append(bars, domain.Bar{
			Date:     date,
			Open:     row.Open,
			High:     row.High,
			Low:      row.Low,
			Close:    row.Close,
			Volume:   row.Volume,
			Turnover: row.Amount,
		})
	}
	return bars, nil
}
