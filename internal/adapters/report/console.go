package report

// console.go renders a finished run to the terminal: summary block,
// trade log table, open positions, all derived from the SimulationResult
// contract only.

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/jinhyuklee/leadstock/internal/backtest"
	"github.com/jinhyuklee/leadstock/internal/domain"
)

// Console implements ports.Reporter, writing tables to stdout.
type Console struct {
	out       io.Writer
	maxTrades int // 0 = print all
}

// NewConsole creates a reporter writing to stdout.
func NewConsole(maxTrades int) *Console {
	return &Console{out: os.Stdout, maxTrades: maxTrades}
}

// NewConsoleWriter creates a reporter for tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Report prints the run summary, the trade log, and the open positions.
func (c *Console) Report(_ context.Context, result *domain.SimulationResult) error {
	s := backtest.Summarize(result)

	fmt.Fprintf(c.out, "\n=== backtest %s ~ %s ===\n",
		result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))
	fmt.Fprintf(c.out, "initial capital: %15.0f\n", s.InitialCapital)
	fmt.Fprintf(c.out, "final value:     %15.0f\n", s.FinalValue)
	fmt.Fprintf(c.out, "total return:    %14.2f%%\n", s.TotalReturnPct)
	fmt.Fprintf(c.out, "CAGR:            %14.2f%%\n", s.CAGRPct)
	fmt.Fprintf(c.out, "max drawdown:    %14.2f%%\n", s.MaxDrawdownPct)
	fmt.Fprintf(c.out, "trades: %d | open positions: %d\n", s.TradeCount, s.OpenPositions)
	if len(result.FailedTickers) > 0 {
		fmt.Fprintf(c.out, "dropped tickers (fetch failed): %d\n", len(result.FailedTickers))
	}

	c.printTrades(result.Trades)
	c.printPositions(result.Positions)
	return nil
}

func (c *Console) printTrades(trades []domain.TradeRecord) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "\nno trades executed")
		return
	}

	shown := trades
	if c.maxTrades > 0 && len(shown) > c.maxTrades {
		fmt.Fprintf(c.out, "\nlast %d of %d trades:\n", c.maxTrades, len(trades))
		shown = shown[len(shown)-c.maxTrades:]
	} else {
		fmt.Fprintf(c.out, "\ntrades (%d):\n", len(trades))
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Ticker", "Name", "Action", "Price", "Qty", "Fee", "Note")
	for _, t := range shown {
		table.Append(
			t.Date.Format("2006-01-02"),
			t.Ticker,
			t.Name,
			string(t.Action),
			fmt.Sprintf("%.0f", t.Price),
			fmt.Sprintf("%d", t.Quantity),
			fmt.Sprintf("%.0f", t.Fee),
			t.Note,
		)
	}
	table.Render()
}

func (c *Console) printPositions(positions []domain.Position) {
	if len(positions) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\nopen positions (%d):\n", len(positions))
	table := tablewriter.NewWriter(c.out)
	table.Header("Ticker", "Qty", "Entry", "Entry Date", "Cost Basis")
	for _, p := range positions {
		table.Append(
			p.Ticker,
			fmt.Sprintf("%d", p.Quantity),
			fmt.Sprintf("%.0f", p.AvgEntryPrice),
			p.EntryDate.Format("2006-01-02"),
			fmt.Sprintf("%.0f", p.CostBasis),
		)
	}
	table.Render()
}

// PrintHistory renders stored simulation headers, newest first.
func (c *Console) PrintHistory(metas []domain.SimulationMeta) {
	if len(metas) == 0 {
		fmt.Fprintln(c.out, "no stored simulations")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Created", "Range", "Trades", "Final Value")
	for _, m := range metas {
		table.Append(
			shortID(m.ID),
			m.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%s ~ %s", m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02")),
			fmt.Sprintf("%d", m.TradeCount),
			fmt.Sprintf("%.0f", m.FinalValue),
		)
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
