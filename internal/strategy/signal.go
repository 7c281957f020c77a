package strategy

// signal.go: pure buy/sell decision functions over one ticker's derived
// series as of a bar index. Both return false whenever a required derived
// value is undefined; insufficient history is a skip, not an error.

import (
	"fmt"
	"math"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

// Evaluator applies the configured rules to a derived series.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator for the given parameters.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Buy reports whether the buy signal fires at bar i.
//
// Two conditions, both required:
//  1. close(i) above the long MA: the ticker is in a long-term uptrend.
//  2. The short-MA slope proxy (maShort(i) − maShort(i−1)) crosses from
//     ≤ 0 at i−1 to > 0 at i, examined over the three points i−2, i−1, i.
//
// Condition 2 demands a just-turned-positive short-term trend, not merely
// a rising one: this is a reversal-confirmation gate.
func (e *Evaluator) Buy(s *domain.Series, i int) bool {
	if i < 2 || i >= s.Len() {
		return false
	}
	maLong := s.MALong[i]
	if !domain.Defined(maLong) || s.Close[i] <= maLong {
		return false
	}

	ms0, ms1, ms2 := s.MAShort[i], s.MAShort[i-1], s.MAShort[i-2]
	if !domain.Defined(ms0) || !domain.Defined(ms1) || !domain.Defined(ms2) {
		return false
	}
	slopeNow := ms0 - ms1
	slopePrev := ms1 - ms2
	return slopePrev <= 0 && slopeNow > 0
}

// Sell reports whether the sell signal fires at bar i, with an audit-only
// reason string. Rules are evaluated in order, each independent:
//
//  1. Trend break (if enabled): close(i) below the short MA. The short MA
//     acts as a tight trailing stop here.
//  2. Slope protection: only when slope_pct(i) < 0; fires when the drop is
//     deeper than the largest up-slope seen in the lookback window, scaled
//     by the multiplier. When the recorded max up-slope is 0 (no prior
//     uptrend observed) this rule never fires, to avoid a degenerate
//     always-true trigger.
func (e *Evaluator) Sell(s *domain.Series, i int) (bool, string) {
	if i < 0 || i >= s.Len() {
		return false, ""
	}
	close := s.Close[i]

	if e.cfg.UseTrendBreak {
		if ms := s.MAShort[i]; domain.Defined(ms) && close < ms {
			return true, fmt.Sprintf("trend break (close < %dMA)", e.cfg.MAShort)
		}
	}

	slope := s.SlopePct[i]
	maxUp := s.MaxUpSlope[i]
	if !domain.Defined(slope) || !domain.Defined(maxUp) {
		return false, ""
	}
	if slope >= 0 || maxUp == 0 {
		return false, ""
	}
	if math.Abs(slope) > maxUp*e.cfg.SellSlopeMultiplier {
		return true, fmt.Sprintf("deep correction (down %.1f > up %.1f x%.1f)",
			slope, maxUp, e.cfg.SellSlopeMultiplier)
	}
	return false, ""
}
