package domain

import "time"

// Bar is a single daily OHLCV bar for one ticker.
// Bars come from the provider in ascending date order, without duplicate
// dates, and with Open > 0 and Close > 0 (violating rows are filtered
// upstream before they reach the engine).
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Turnover float64 // traded value in currency; 0 means "not provided"
}

// EffectiveTurnover returns the bar's traded value, deriving it from
// close × volume when the provider has no native turnover field.
func (b Bar) EffectiveTurnover() float64 {
	if b.Turnover > 0 {
		return b.Turnover
	}
	return b.Close * b.Volume
}

// DayKey normalizes a timestamp to a comparable trading-day key (UTC midnight).
func DayKey(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}
