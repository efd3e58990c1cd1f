package storage

// sqlite.go is the local store for synced exchange facts and computed
// summaries.
//
// Fills and settlements are upserted by their natural keys, so re-syncing
// overlapping history is idempotent. LoadFills orders by executed_at with
// rowid as tie-break: rowid is assigned on first insert, so equal-timestamp
// fills replay in the order they were first seen. The FIFO matcher's
// "oldest lot" depends on that order.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fills (
    id          TEXT PRIMARY KEY,
    ticker      TEXT     NOT NULL,
    side        TEXT     NOT NULL,
    action      TEXT     NOT NULL,
    quantity    INTEGER  NOT NULL,
    price_cents INTEGER  NOT NULL,
    executed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settlements (
    ticker              TEXT PRIMARY KEY,
    result              TEXT     NOT NULL,
    yes_count           INTEGER  NOT NULL DEFAULT 0,
    no_count            INTEGER  NOT NULL DEFAULT 0,
    yes_total_cost      INTEGER  NOT NULL DEFAULT 0,
    no_total_cost       INTEGER  NOT NULL DEFAULT 0,
    revenue_cents       INTEGER  NOT NULL DEFAULT 0,
    fee_cents           INTEGER  NOT NULL DEFAULT 0,
    settled_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
    ticker             TEXT PRIMARY KEY,
    quantity           INTEGER NOT NULL,
    realized_pnl_cents INTEGER NOT NULL DEFAULT 0,
    updated_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id          TEXT PRIMARY KEY,
    started_at  DATETIME NOT NULL,
    fills       INTEGER  NOT NULL DEFAULT 0,
    settlements INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS summaries (
    run_id               TEXT PRIMARY KEY,
    created_at           DATETIME NOT NULL,
    realized_pnl_cents   INTEGER  NOT NULL,
    closed_trades        INTEGER  NOT NULL,
    wins                 INTEGER  NOT NULL,
    losses               INTEGER  NOT NULL,
    avg_win_cents        INTEGER  NOT NULL,
    avg_loss_cents       INTEGER  NOT NULL,
    orphan_qty_skipped   INTEGER  NOT NULL,
    unknown_basis_count  INTEGER  NOT NULL,
    open_position_count  INTEGER  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_ticker ON fills(ticker);
CREATE INDEX IF NOT EXISTS idx_fills_at     ON fills(executed_at);
`

// SQLiteStorage implements ports.Storage using SQLite (pure Go, no CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at the given path and
// applies the schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveFills upserts fills by trade id inside one transaction.
func (s *SQLiteStorage) SaveFills(ctx context.Context, fills []domain.Trade) error {
	if len(fills) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveFills: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fills (id, ticker, side, action, quantity, price_cents, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ticker      = excluded.ticker,
			side        = excluded.side,
			action      = excluded.action,
			quantity    = excluded.quantity,
			price_cents = excluded.price_cents,
			executed_at = excluded.executed_at
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveFills: prepare: %w", err)
	}
	defer stmt.Close()

	for _, f := range fills {
		if _, err := stmt.ExecContext(ctx,
			f.ID, f.Ticker, string(f.Side), string(f.Action),
			f.Quantity, f.PriceCents, f.ExecutedAt.UTC(),
		); err != nil {
			return fmt.Errorf("storage.SaveFills: upsert %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveFills: commit: %w", err)
	}
	return nil
}

// SaveSettlements upserts settlements by ticker. The primary key doubles as
// the at-most-one-settlement-per-ticker guarantee at the storage layer.
func (s *SQLiteStorage) SaveSettlements(ctx context.Context, settlements []domain.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSettlements: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO settlements
			(ticker, result, yes_count, no_count, yes_total_cost, no_total_cost,
			 revenue_cents, fee_cents, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			result         = excluded.result,
			yes_count      = excluded.yes_count,
			no_count       = excluded.no_count,
			yes_total_cost = excluded.yes_total_cost,
			no_total_cost  = excluded.no_total_cost,
			revenue_cents  = excluded.revenue_cents,
			fee_cents      = excluded.fee_cents,
			settled_at     = excluded.settled_at
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveSettlements: prepare: %w", err)
	}
	defer stmt.Close()

	for _, st := range settlements {
		if _, err := stmt.ExecContext(ctx,
			st.Ticker, string(st.Result), st.YesCount, st.NoCount,
			st.YesTotalCostCents, st.NoTotalCostCents,
			st.RevenueCents, st.FeeCents, st.SettledAt.UTC(),
		); err != nil {
			return fmt.Errorf("storage.SaveSettlements: upsert %s: %w", st.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSettlements: commit: %w", err)
	}
	return nil
}

// SavePositions replaces the exchange-reported position snapshot.
func (s *SQLiteStorage) SavePositions(ctx context.Context, positions []domain.ExternalPosition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePositions: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Snapshot semantics: positions the exchange no longer reports are gone.
	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("storage.SavePositions: clear: %w", err)
	}

	now := time.Now().UTC()
	for _, p := range positions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO positions (ticker, quantity, realized_pnl_cents, updated_at) VALUES (?, ?, ?, ?)`,
			p.Ticker, p.Quantity, p.RealizedPnLCents, now,
		); err != nil {
			return fmt.Errorf("storage.SavePositions: insert %s: %w", p.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePositions: commit: %w", err)
	}
	return nil
}

// RecordSyncRun stores the metadata of one sync.
func (s *SQLiteStorage) RecordSyncRun(ctx context.Context, run domain.SyncRun) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, started_at, fills, settlements) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FillCount, run.SettlementCount,
	); err != nil {
		return fmt.Errorf("storage.RecordSyncRun: %w", err)
	}
	return nil
}

// LoadFills returns all fills in chronological order. rowid breaks
// equal-timestamp ties by first-insertion order.
func (s *SQLiteStorage) LoadFills(ctx context.Context) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, side, action, quantity, price_cents, executed_at
		FROM fills
		ORDER BY executed_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadFills: query: %w", err)
	}
	defer rows.Close()

	var fills []domain.Trade
	for rows.Next() {
		var f domain.Trade
		var side, action, executedAt string
		if err := rows.Scan(&f.ID, &f.Ticker, &side, &action, &f.Quantity, &f.PriceCents, &executedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadFills: scan row: %w", err)
		}
		f.Side = domain.Side(side)
		f.Action = domain.Action(action)
		f.ExecutedAt, err = parseStoredTime(executedAt)
		if err != nil {
			return nil, fmt.Errorf("storage.LoadFills: fill %s: %w", f.ID, err)
		}
		fills = append(fills, f)
	}

	return fills, rows.Err()
}

// LoadSettlements returns all settlements, ordered by ticker.
func (s *SQLiteStorage) LoadSettlements(ctx context.Context) ([]domain.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, result, yes_count, no_count, yes_total_cost, no_total_cost,
		       revenue_cents, fee_cents, settled_at
		FROM settlements
		ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadSettlements: query: %w", err)
	}
	defer rows.Close()

	var settlements []domain.Settlement
	for rows.Next() {
		var st domain.Settlement
		var result, settledAt string
		if err := rows.Scan(&st.Ticker, &result, &st.YesCount, &st.NoCount,
			&st.YesTotalCostCents, &st.NoTotalCostCents,
			&st.RevenueCents, &st.FeeCents, &settledAt,
		); err != nil {
			return nil, fmt.Errorf("storage.LoadSettlements: scan row: %w", err)
		}
		st.Result = domain.MarketResult(result)
		st.SettledAt, err = parseStoredTime(settledAt)
		if err != nil {
			return nil, fmt.Errorf("storage.LoadSettlements: %s: %w", st.Ticker, err)
		}
		settlements = append(settlements, st)
	}

	return settlements, rows.Err()
}

// LoadPositions returns the last synced position snapshot.
func (s *SQLiteStorage) LoadPositions(ctx context.Context) ([]domain.ExternalPosition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, quantity, realized_pnl_cents FROM positions ORDER BY ticker`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadPositions: query: %w", err)
	}
	defer rows.Close()

	var positions []domain.ExternalPosition
	for rows.Next() {
		var p domain.ExternalPosition
		if err := rows.Scan(&p.Ticker, &p.Quantity, &p.RealizedPnLCents); err != nil {
			return nil, fmt.Errorf("storage.LoadPositions: scan row: %w", err)
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

// SaveSummary records the headline figures of a computed summary.
func (s *SQLiteStorage) SaveSummary(ctx context.Context, runID string, sum *domain.PnLSummary) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries
			(run_id, created_at, realized_pnl_cents, closed_trades, wins, losses,
			 avg_win_cents, avg_loss_cents, orphan_qty_skipped,
			 unknown_basis_count, open_position_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID, time.Now().UTC(),
		sum.RealizedPnLCents, sum.ClosedTradeCount, sum.WinningCount, sum.LosingCount,
		sum.AvgWinCents, sum.AvgLossCents, sum.OrphanCloseQuantitySkipped,
		sum.UnknownCostBasisCount, sum.OpenPositionCount,
	); err != nil {
		return fmt.Errorf("storage.SaveSummary: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// parseStoredTime handles the timestamp formats the sqlite driver may hand
// back for DATETIME columns.
func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable stored timestamp %q", s)
}
