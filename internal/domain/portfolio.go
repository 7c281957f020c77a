package domain

import "time"

// Action is the side of a trade record.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Position is one open holding. It exists iff Quantity > 0: positions are
// created whole on a buy fill and destroyed whole on a sell fill, there is
// no scaling in or out.
type Position struct {
	Ticker        string
	Quantity      int64
	AvgEntryPrice float64
	EntryDate     time.Time
	CostBasis     float64 // quantity × entry price, excluding fees
}

// TradeRecord is one executed fill, append-only and audit-only.
// Note never feeds back into control flow.
type TradeRecord struct {
	Date     time.Time
	Ticker   string
	Name     string
	Action   Action
	Price    float64
	Quantity int64
	Fee      float64
	Note     string
}

// EquityPoint is one mark-to-market valuation, one per trading day.
type EquityPoint struct {
	Date       time.Time
	TotalValue float64
}
