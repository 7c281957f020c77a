package marketdata

// listing.go: universe listing, either market-cap-ranked stocks or a fixed
// whitelist for the curated ETF mode.
//
// The listing endpoint returns the latest snapshot, not the ranking as of
// an arbitrary historical date; the ranked universe is an approximation
// accepted by the strategy.

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

type listingRow struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"marketCap"`
}

// RankedUniverse implements ports.UniverseProvider: the top N KOSPI plus
// top M KOSDAQ tickers by market cap.
type RankedUniverse struct {
	client  *Client
	kospiN  int
	kosdaqN int
}

// NewRankedUniverse creates the broad-stock universe provider.
func NewRankedUniverse(client *Client, kospiN, kosdaqN int) *RankedUniverse {
	return &RankedUniverse{client: client, kospiN: kospiN, kosdaqN: kosdaqN}
}

// FetchUniverse returns ticker → name for the ranked universe.
func (u *RankedUniverse) FetchUniverse(ctx context.Context) (map[string]string, error) {
	universe := make(map[string]string, u.kospiN+u.kosdaqN)
	for _, m := range []struct {
		market string
		top    int
	}{
		{"KOSPI", u.kospiN},
		{"KOSDAQ", u.kosdaqN},
	} {
		rows, err := u.client.fetchListing(ctx, m.market)
		if err != nil {
			return nil, fmt.Errorf("marketdata.FetchUniverse: %s: %w", m.market, err)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].MarketCap > rows[j].MarketCap })
		if len(rows) > m.top {
			rows = rows[:m.top]
		}
		for _, row := range rows {
			name := row.Name
			if name == "" {
				name = row.Code
			}
			universe[row.Code] = name
		}
	}
	return universe, nil
}

func (c *Client) fetchListing(ctx context.Context, market string) ([]listingRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/listing/" + market)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}
	var rows []listingRow
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	return rows, nil
}

// StaticUniverse implements ports.UniverseProvider over a fixed
// ticker → name whitelist (the ETF mode).
type StaticUniverse map[string]string

// FetchUniverse returns a copy of the whitelist.
func (u StaticUniverse) FetchUniverse(_ context.Context) (map[string]string, error) {
	if len(u) == 0 {
		return nil, fmt.Errorf("marketdata.StaticUniverse: empty whitelist")
	}
	out := make(map[string]string, len(u))
	for ticker, name := range u {
		out[ticker] = name
	}
	return out, nil
}
