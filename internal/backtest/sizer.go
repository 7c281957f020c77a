package backtest

// sizer.go: volatility-scaled position sizing under exposure caps.

import (
	"math"

	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/indicator"
)

const atrWindow = 14

// Sizer computes order quantities: risk budget divided by ATR, capped by
// the max-position share of equity and by available cash.
type Sizer struct {
	riskPerTrade   float64
	maxPositionPct float64
	buyFeeRate     float64
}

// NewSizer creates a Sizer from the run config.
func NewSizer(cfg Config) *Sizer {
	return &Sizer{
		riskPerTrade:   cfg.RiskPerTrade,
		maxPositionPct: cfg.MaxPositionPct,
		buyFeeRate:     cfg.BuyFeeRate,
	}
}

// Quantity returns the order size for a buy at bar i of the series, plus
// the ATR used. equity is total equity at cost basis (cash + Σ cost basis
// of open positions), deliberately not mark-to-market, so unrealized
// gains cannot inflate new position sizes. A result of 0 means "skip",
// never an error: ATR of 0 and tiny risk budgets both floor to no trade.
//
// The cash cap includes the buy fee, so a fill at the returned quantity
// can never drive the cash balance negative.
func (sz *Sizer) Quantity(s *domain.Series, i int, equity, cash float64) (qty int64, atr float64) {
	price := s.Close[i]
	if price <= 0 {
		return 0, 0
	}
	atr = indicator.ATR(s, i, atrWindow)
	if atr <= 0 {
		return 0, atr
	}

	riskBudget := equity * sz.riskPerTrade
	qty = int64(riskBudget / atr)

	maxNotional := equity * sz.maxPositionPct
	if float64(qty)*price > maxNotional {
		qty = int64(maxNotional / price)
	}
	if float64(qty)*price*(1+sz.buyFeeRate) > cash {
		qty = int64(math.Floor(cash / (price * (1 + sz.buyFeeRate))))
	}
	if qty < 0 {
		qty = 0
	}
	return qty, atr
}
