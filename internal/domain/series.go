package domain

import (
	"math"
	"time"
)

// Undefined is the sentinel for derived values that lack enough trailing
// history. It is NaN, never zero: a zero momentum score or a zero moving
// average is a legitimate value and must not be confused with "no data".
var Undefined = math.NaN()

// Defined reports whether a derived value carries real data.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// Series holds one ticker's raw bars plus the date-aligned derived columns
// the strategy consumes. All slices share the same length and indexing as
// Dates. The value at index i is computed from bars 0..i only; once built,
// a Series is read-only.
type Series struct {
	Ticker string
	Dates  []time.Time

	Open     []float64
	High     []float64
	Low      []float64
	Close    []float64
	Volume   []float64
	Turnover []float64

	MAShort     []float64
	MALong      []float64
	SlopeRaw    []float64
	SlopePct    []float64
	MaxUpSlope  []float64 // rolling max of positive SlopePct over strictly prior days
	Momentum    []float64 // weighted multi-horizon return blend, ×100
	LiquidityMA []float64 // 20-day rolling mean turnover

	index map[int64]int
}

// NewSeries allocates a Series for n bars of the given ticker.
func NewSeries(ticker string, n int) *Series {
	s := &Series{
		Ticker:      ticker,
		Dates:       make([]time.Time, n),
		Open:        make([]float64, n),
		High:        make([]float64, n),
		Low:         make([]float64, n),
		Close:       make([]float64, n),
		Volume:      make([]float64, n),
		Turnover:    make([]float64, n),
		MAShort:     make([]float64, n),
		MALong:      make([]float64, n),
		SlopeRaw:    make([]float64, n),
		SlopePct:    make([]float64, n),
		MaxUpSlope:  make([]float64, n),
		Momentum:    make([]float64, n),
		LiquidityMA: make([]float64, n),
		index:       make(map[int64]int, n),
	}
	return s
}

// SetDate records the date of bar i and registers it for lookup.
func (s *Series) SetDate(i int, d time.Time) {
	s.Dates[i] = d
	s.index[DayKey(d)] = i
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Dates)
}

// At returns the index of the bar dated exactly d.
func (s *Series) At(d time.Time) (int, bool) {
	i, ok := s.index[DayKey(d)]
	return i, ok
}

// AsOf returns the index of the latest bar dated at or before d.
// Used for sell evaluation: a halted ticker is judged on its last print.
func (s *Series) AsOf(d time.Time) (int, bool) {
	if i, ok := s.index[DayKey(d)]; ok {
		return i, true
	}
	key := DayKey(d)
	lo, hi := 0, len(s.Dates)
	for lo < hi {
		mid := (lo + hi) / 2
		if DayKey(s.Dates[mid]) <= key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, false
	}
	return lo - 1, true
}
