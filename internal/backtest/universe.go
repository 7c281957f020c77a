package backtest

// universe.go: daily universe selection by liquidity floor and momentum rank.
//
// Rebalancing is daily, not monthly: leading-stock momentum decays within
// days, so the pool must pick up that day's strength immediately.

import (
	"sort"
	"time"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

// Selector ranks the tradable universe for a given day.
type Selector struct {
	liquidityFloor float64
	poolSize       int
}

// NewSelector creates a Selector with the given floor and pool size.
func NewSelector(liquidityFloor float64, poolSize int) *Selector {
	return &Selector{liquidityFloor: liquidityFloor, poolSize: poolSize}
}

// Snapshot builds the target pool for one trading day. A ticker is
// included iff it has a bar dated exactly on the day, a defined 20-day
// liquidity average at or above the floor, and a defined momentum score.
// Candidates are sorted by score descending, ties by ticker ascending for
// determinism, and truncated to the pool size.
func (sel *Selector) Snapshot(date time.Time, series map[string]*domain.Series) domain.UniverseSnapshot {
	candidates := make([]domain.Candidate, 0, len(series))
	for ticker, s := range series {
		i, ok := s.At(date)
		if !ok {
			continue
		}
		liq := s.LiquidityMA[i]
		if !domain.Defined(liq) || liq < sel.liquidityFloor {
			continue
		}
		score := s.Momentum[i]
		if !domain.Defined(score) {
			continue
		}
		candidates = append(candidates, domain.Candidate{Ticker: ticker, Score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Ticker < candidates[j].Ticker
	})

	if len(candidates) > sel.poolSize {
		candidates = candidates[:sel.poolSize]
	}
	return domain.UniverseSnapshot{Date: date, Candidates: candidates}
}
