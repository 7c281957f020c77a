package backtest

// result.go: summary statistics over a finished run.

import (
	"math"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

// Summary condenses a run into the headline figures.
type Summary struct {
	InitialCapital float64
	FinalValue     float64
	TotalReturnPct float64
	CAGRPct        float64
	MaxDrawdownPct float64 // negative or zero
	TradeCount     int
	OpenPositions  int
}

// Summarize computes the summary statistics of a result. CAGR annualizes
// over the calendar span of the simulated range.
func Summarize(r *domain.SimulationResult) Summary {
	s := Summary{
		InitialCapital: r.InitialCapital,
		FinalValue:     r.FinalValue(),
		TradeCount:     len(r.Trades),
		OpenPositions:  len(r.Positions),
	}
	if r.InitialCapital > 0 {
		s.TotalReturnPct = (s.FinalValue - r.InitialCapital) / r.InitialCapital * 100
	}

	days := r.EndDate.Sub(r.StartDate).Hours() / 24
	if days > 0 && r.InitialCapital > 0 && s.FinalValue > 0 {
		s.CAGRPct = (math.Pow(s.FinalValue/r.InitialCapital, 365/days) - 1) * 100
	}

	s.MaxDrawdownPct = maxDrawdown(r.Equity)
	return s
}

// maxDrawdown returns the deepest peak-to-trough decline of the equity
// curve, in percent (≤ 0).
func maxDrawdown(equity []domain.EquityPoint) float64 {
	var peak, worst float64
	for _, p := range equity {
		if p.TotalValue > peak {
			peak = p.TotalValue
		}
		if peak > 0 {
			dd := (p.TotalValue - peak) / peak * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
