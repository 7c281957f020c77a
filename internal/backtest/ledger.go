package backtest

// ledger.go tracks the portfolio: cash, open positions, fills, fees,
// mark-to-market. The ledger is the only owner of position state; the
// driver never mutates positions directly.

import (
	"fmt"
	"sort"
	"time"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

// Ledger tracks the cash balance, open positions, and the append-only
// trade log of one simulation run.
type Ledger struct {
	cash        float64
	positions   map[string]domain.Position
	trades      []domain.TradeRecord
	buyFeeRate  float64
	sellFeeRate float64
}

// NewLedger creates a Ledger with the initial capital and fee rates.
func NewLedger(initialCash, buyFeeRate, sellFeeRate float64) *Ledger {
	return &Ledger{
		cash:        initialCash,
		positions:   make(map[string]domain.Position),
		buyFeeRate:  buyFeeRate,
		sellFeeRate: sellFeeRate,
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// PositionCount returns the number of open positions.
func (l *Ledger) PositionCount() int { return len(l.positions) }

// Holds reports whether a position in ticker is open.
func (l *Ledger) Holds(ticker string) bool {
	_, ok := l.positions[ticker]
	return ok
}

// HeldTickers returns the open tickers sorted ascending. The driver
// iterates this stable snapshot when checking sells, so fills executed
// mid-loop cannot alter the iteration set.
func (l *Ledger) HeldTickers() []string {
	tickers := make([]string, 0, len(l.positions))
	for t := range l.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Positions returns copies of the open positions, sorted by ticker.
func (l *Ledger) Positions() []domain.Position {
	out := make([]domain.Position, 0, len(l.positions))
	for _, t := range l.HeldTickers() {
		out = append(out, l.positions[t])
	}
	return out
}

// Trades returns the trade log.
func (l *Ledger) Trades() []domain.TradeRecord { return l.trades }

// TotalEquityAtCost returns cash plus the cost basis of open positions.
// This is the conservative equity figure sizing uses.
func (l *Ledger) TotalEquityAtCost() float64 {
	equity := l.cash
	for _, p := range l.positions {
		equity += p.CostBasis
	}
	return equity
}

// FillBuy opens a whole position: debits notional plus fee, records the
// trade. Fails if the ticker is already held or the order is unaffordable;
// the sizer's cash cap makes the latter a driver-ordering defect.
func (l *Ledger) FillBuy(ticker, name string, date time.Time, price float64, qty int64, note string) error {
	if qty <= 0 {
		return fmt.Errorf("ledger.FillBuy: non-positive quantity %d for %s", qty, ticker)
	}
	if _, ok := l.positions[ticker]; ok {
		return fmt.Errorf("ledger.FillBuy: position already open for %s", ticker)
	}
	notional := float64(qty) * price
	fee := notional * l.buyFeeRate
	if notional+fee > l.cash {
		return fmt.Errorf("ledger.FillBuy: insufficient cash for %s: need %.2f, have %.2f",
			ticker, notional+fee, l.cash)
	}

	l.cash -= notional + fee
	l.positions[ticker] = domain.Position{
		Ticker:        ticker,
		Quantity:      qty,
		AvgEntryPrice: price,
		EntryDate:     date,
		CostBasis:     notional,
	}
	l.trades = append(l.trades, domain.TradeRecord{
		Date:     date,
		Ticker:   ticker,
		Name:     name,
		Action:   domain.ActionBuy,
		Price:    price,
		Quantity: qty,
		Fee:      fee,
		Note:     note,
	})
	return nil
}

// FillSell closes the whole position at the given price: credits notional
// minus fee, removes the position, records the trade with the realized
// profit appended to the reason. Selling a ticker with no open position is
// a no-op returning false: a driver-ordering defect that tests assert
// against rather than something to tolerate silently.
func (l *Ledger) FillSell(ticker, name string, date time.Time, price float64, reason string) bool {
	pos, ok := l.positions[ticker]
	if !ok {
		return false
	}
	notional := float64(pos.Quantity) * price
	fee := notional * l.sellFeeRate
	l.cash += notional - fee

	profitPct := (price - pos.AvgEntryPrice) / pos.AvgEntryPrice * 100
	l.trades = append(l.trades, domain.TradeRecord{
		Date:     date,
		Ticker:   ticker,
		Name:     name,
		Action:   domain.ActionSell,
		Price:    price,
		Quantity: pos.Quantity,
		Fee:      fee,
		Note:     fmt.Sprintf("%s (profit %.2f%%)", reason, profitPct),
	})
	delete(l.positions, ticker)
	return true
}

// MarkToMarket values the portfolio at the day's closes: cash plus
// quantity × close for each holding. A held ticker with no bar for the
// date (a halt) is valued at its average entry price instead of being
// omitted, keeping the equity curve continuous.
func (l *Ledger) MarkToMarket(date time.Time, series map[string]*domain.Series) float64 {
	equity := l.cash
	for ticker, pos := range l.positions {
		price := pos.AvgEntryPrice
		if s, ok := series[ticker]; ok {
			if i, ok := s.At(date); ok {
				price = s.Close[i]
			}
		}
		equity += float64(pos.Quantity) * price
	}
	return equity
}
