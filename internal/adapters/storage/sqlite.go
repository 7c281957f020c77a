package storage

// sqlite.go: local persistence for the bar cache and finished simulations.
//
// Layout:
//   - `market_data`: one row per (ticker, date) bar, upserted on fetch.
//   - `bar_meta`: one row per ticker recording the fetched range and the
//     schema version, the coverage metadata the loader's staleness
//     policy reads. A cached range is reused only when it covers the
//     requested warm-up+simulation window.
//   - `simulations` / `equity` / `trades`: one header row per run plus
//     its equity curve and trade log.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS market_data (
    ticker  TEXT NOT NULL,
    date    TEXT NOT NULL,
    open    REAL NOT NULL,
    high    REAL NOT NULL,
    low     REAL NOT NULL,
    close   REAL NOT NULL,
    volume  REAL NOT NULL,
    amount  REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS bar_meta (
    ticker         TEXT PRIMARY KEY,
    first_date     TEXT NOT NULL,
    last_date      TEXT NOT NULL,
    schema_version INTEGER NOT NULL,
    fetched_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS simulations (
    id          TEXT PRIMARY KEY,
    created_at  DATETIME NOT NULL,
    start_date  TEXT NOT NULL,
    end_date    TEXT NOT NULL,
    params_json TEXT NOT NULL,
    trade_count INTEGER NOT NULL DEFAULT 0,
    final_value REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS equity (
    simulation_id TEXT NOT NULL,
    date          TEXT NOT NULL,
    total_value   REAL NOT NULL,
    FOREIGN KEY(simulation_id) REFERENCES simulations(id)
);

CREATE TABLE IF NOT EXISTS trades (
    simulation_id TEXT NOT NULL,
    date          TEXT NOT NULL,
    ticker        TEXT NOT NULL,
    name          TEXT,
    action        TEXT NOT NULL,
    price         REAL NOT NULL,
    qty           INTEGER NOT NULL,
    fee           REAL NOT NULL,
    note          TEXT,
    FOREIGN KEY(simulation_id) REFERENCES simulations(id)
);

CREATE INDEX IF NOT EXISTS idx_market_ticker ON market_data(ticker, date);
CREATE INDEX IF NOT EXISTS idx_equity_sim    ON equity(simulation_id);
CREATE INDEX IF NOT EXISTS idx_trades_sim    ON trades(simulation_id);
`

const dateLayout = "2006-01-02"

// SQLiteStore implements ports.BarStore and ports.ResultStore over a
// single SQLite file (pure Go driver, no CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema. Use ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// LoadBars bulk-loads cached bars for the tickers within [from, to].
func (s *SQLiteStore) LoadBars(ctx context.Context, tickers []string, from, to time.Time) (map[string][]domain.Bar, error) {
	out := make(map[string][]domain.Bar, len(tickers))
	stmt, err := s.db.PrepareContext(ctx, `
		SELECT date, open, high, low, close, volume, amount
		FROM market_data
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadBars: prepare: %w", err)
	}
	defer stmt.Close()

	for _, ticker := range tickers {
		bars, err := s.loadTicker(ctx, stmt, ticker, from, to)
		if err != nil {
			return nil, fmt.Errorf("storage.LoadBars: %s: %w", ticker, err)
		}
		if len(bars) > 0 {
			out[ticker] = bars
		}
	}
	return out, nil
}

func (s *SQLiteStore) loadTicker(ctx context.Context, stmt *sql.Stmt, ticker string, from, to time.Time) ([]domain.Bar, error) {
	rows, err := stmt.QueryContext(ctx, ticker, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var dateStr string
		var b domain.Bar
		if err := rows.Scan(&dateStr, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Turnover); err != nil {
			return nil, err
		}
		b.Date, err = time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", dateStr, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SaveBars upserts a ticker's bars and records the fetched range as its
// coverage, all in one transaction.
func (s *SQLiteStore) SaveBars(ctx context.Context, ticker string, bars []domain.Bar, from, to time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveBars: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO market_data (ticker, date, open, high, low, close, volume, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume, amount=excluded.amount`)
	if err != nil {
		return fmt.Errorf("storage.SaveBars: prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, ticker, b.Date.Format(dateLayout),
			b.Open, b.High, b.Low, b.Close, b.Volume, b.Turnover); err != nil {
			return fmt.Errorf("storage.SaveBars: %s %s: %w", ticker, b.Date.Format(dateLayout), err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bar_meta (ticker, first_date, last_date, schema_version, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			first_date=excluded.first_date, last_date=excluded.last_date,
			schema_version=excluded.schema_version, fetched_at=excluded.fetched_at`,
		ticker, from.Format(dateLayout), to.Format(dateLayout),
		ports.BarSchemaVersion, time.Now().UTC()); err != nil {
		return fmt.Errorf("storage.SaveBars: meta %s: %w", ticker, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveBars: commit: %w", err)
	}
	return nil
}

// BarCoverage returns the stored coverage row for ticker.
func (s *SQLiteStore) BarCoverage(ctx context.Context, ticker string) (ports.Coverage, bool, error) {
	var first, last string
	var version int
	err := s.db.QueryRowContext(ctx, `
		SELECT first_date, last_date, schema_version FROM bar_meta WHERE ticker = ?`,
		ticker).Scan(&first, &last, &version)
	if err == sql.ErrNoRows {
		return ports.Coverage{}, false, nil
	}
	if err != nil {
		return ports.Coverage{}, false, fmt.Errorf("storage.BarCoverage: %s: %w", ticker, err)
	}

	cov := ports.Coverage{SchemaVersion: version}
	if cov.FirstDate, err = time.ParseInLocation(dateLayout, first, time.UTC); err != nil {
		return ports.Coverage{}, false, fmt.Errorf("storage.BarCoverage: %s: bad first_date: %w", ticker, err)
	}
	if cov.LastDate, err = time.ParseInLocation(dateLayout, last, time.UTC); err != nil {
		return ports.Coverage{}, false, fmt.Errorf("storage.BarCoverage: %s: bad last_date: %w", ticker, err)
	}
	return cov, true, nil
}

// SaveSimulation stores a finished run: header, equity curve, trade log.
func (s *SQLiteStore) SaveSimulation(ctx context.Context, result *domain.SimulationResult, paramsJSON string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSimulation: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO simulations (id, created_at, start_date, end_date, params_json, trade_count, final_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID, time.Now().UTC(),
		result.StartDate.Format(dateLayout), result.EndDate.Format(dateLayout),
		paramsJSON, len(result.Trades), result.FinalValue()); err != nil {
		return fmt.Errorf("storage.SaveSimulation: header: %w", err)
	}

	for _, p := range result.Equity {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO equity (simulation_id, date, total_value) VALUES (?, ?, ?)`,
			result.ID, p.Date.Format(dateLayout), p.TotalValue); err != nil {
			return fmt.Errorf("storage.SaveSimulation: equity: %w", err)
		}
	}

	for _, t := range result.Trades {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trades (simulation_id, date, ticker, name, action, price, qty, fee, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.ID, t.Date.Format(dateLayout), t.Ticker, t.Name,
			string(t.Action), t.Price, t.Quantity, t.Fee, t.Note); err != nil {
			return fmt.Errorf("storage.SaveSimulation: trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSimulation: commit: %w", err)
	}
	return nil
}

// ListSimulations returns stored run headers, newest first.
func (s *SQLiteStore) ListSimulations(ctx context.Context) ([]domain.SimulationMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, start_date, end_date, params_json, trade_count, final_value
		FROM simulations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListSimulations: %w", err)
	}
	defer rows.Close()

	var out []domain.SimulationMeta
	for rows.Next() {
		var m domain.SimulationMeta
		var start, end string
		if err := rows.Scan(&m.ID, &m.CreatedAt, &start, &end, &m.ParamsJSON, &m.TradeCount, &m.FinalValue); err != nil {
			return nil, fmt.Errorf("storage.ListSimulations: scan: %w", err)
		}
		if m.StartDate, err = time.ParseInLocation(dateLayout, start, time.UTC); err != nil {
			return nil, fmt.Errorf("storage.ListSimulations: bad start_date: %w", err)
		}
		if m.EndDate, err = time.ParseInLocation(dateLayout, end, time.UTC); err != nil {
			return nil, fmt.Errorf("storage.ListSimulations: bad end_date: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
