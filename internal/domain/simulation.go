package domain

import "time"

// SimulationResult is the sole output contract of a backtest run: the
// equity curve, the trade log, and the positions still open on the last
// trading day. Downstream reporting and persistence consume this and
// nothing else.
type SimulationResult struct {
	ID             string // uuid, assigned when the run completes
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	FinalCash      float64

	Equity    []EquityPoint
	Trades    []TradeRecord
	Positions []Position

	// FailedTickers lists tickers dropped from the run because their data
	// could not be fetched. Informational only.
	FailedTickers []string
}

// FinalValue returns the last mark-to-market valuation, or the initial
// capital if the run produced no equity points.
func (r *SimulationResult) FinalValue() float64 {
	if len(r.Equity) == 0 {
		return r.InitialCapital
	}
	return r.Equity[len(r.Equity)-1].TotalValue
}

// SimulationMeta is the stored header of a persisted run.
type SimulationMeta struct {
	ID         string
	CreatedAt  time.Time
	StartDate  time.Time
	EndDate    time.Time
	ParamsJSON string
	TradeCount int
	FinalValue float64
}
