package reconcile

// Service ties the ports together: Sync pulls account history from the
// exchange into storage; Report replays storage through the pure engine and
// hands the summary to the reporter. The engine itself never touches I/O.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
	"github.com/alejandrodnm/kalshiledger/internal/pnl"
	"github.com/alejandrodnm/kalshiledger/internal/ports"
	"github.com/google/uuid"
)

// ExchangeClient is the combined surface the service needs from the API
// adapter.
type ExchangeClient interface {
	ports.TradeSource
	ports.SettlementSource
	ports.PositionSource
	ports.MarketDataSource
}

// Service runs sync and report flows.
type Service struct {
	client  ExchangeClient
	store   ports.Storage
	report  ports.Reporter
	workers int
}

// New creates a Service. workers caps the engine's per-ticker parallelism;
// <= 0 lets the engine pick.
func New(client ExchangeClient, store ports.Storage, reporter ports.Reporter, workers int) *Service {
	return &Service{client: client, store: store, report: reporter, workers: workers}
}

// Sync fetches fills, settlements and positions from the exchange and
// persists them. Re-running over overlapping history is safe: storage
// upserts by natural key.
func (s *Service) Sync(ctx context.Context) error {
	run := domain.SyncRun{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	fills, err := s.client.FetchFills(ctx)
	if err != nil {
		return fmt.Errorf("reconcile.Sync: fills: %w", err)
	}
	if err := s.store.SaveFills(ctx, fills); err != nil {
		return fmt.Errorf("reconcile.Sync: %w", err)
	}
	run.FillCount = len(fills)

	settlements, err := s.client.FetchSettlements(ctx)
	if err != nil {
		return fmt.Errorf("reconcile.Sync: settlements: %w", err)
	}
	if err := s.store.SaveSettlements(ctx, settlements); err != nil {
		return fmt.Errorf("reconcile.Sync: %w", err)
	}
	run.SettlementCount = len(settlements)

	positions, err := s.client.FetchPositions(ctx)
	if err != nil {
		// Positions are a cross-check, not a primary source: a failed
		// fetch degrades the report, it does not fail the sync.
		slog.Warn("position fetch failed, continuing without cross-check", "err", err)
	} else if err := s.store.SavePositions(ctx, positions); err != nil {
		return fmt.Errorf("reconcile.Sync: %w", err)
	}

	if err := s.store.RecordSyncRun(ctx, run); err != nil {
		return fmt.Errorf("reconcile.Sync: %w", err)
	}

	slog.Info("sync complete",
		"run_id", run.ID,
		"fills", run.FillCount,
		"settlements", run.SettlementCount,
	)
	return nil
}

// Report loads the synced facts, reconciles them and renders the summary.
// The computed summary is also persisted under a fresh run id.
func (s *Service) Report(ctx context.Context) (*domain.PnLSummary, error) {
	fills, err := s.store.LoadFills(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile.Report: %w", err)
	}
	settlements, err := s.store.LoadSettlements(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile.Report: %w", err)
	}
	positions, err := s.store.LoadPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile.Report: %w", err)
	}

	marks := s.fetchMarks(ctx, fills, settlements, positions)

	summary, err := pnl.Compute(pnl.Input{
		Trades:          fills,
		Settlements:     settlements,
		Positions:       positions,
		MarkPricesCents: marks,
		Workers:         s.workers,
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile.Report: %w", err)
	}

	s.crossCheck(summary, positions)

	runID := uuid.New().String()
	if err := s.store.SaveSummary(ctx, runID, summary); err != nil {
		slog.Warn("failed to persist summary", "run_id", runID, "err", err)
	}

	if err := s.report.Report(ctx, summary); err != nil {
		return nil, fmt.Errorf("reconcile.Report: render: %w", err)
	}
	return summary, nil
}

// fetchMarks fetches mark prices for tickers that still hold an open,
// unsettled position. Best effort: without marks the report simply has no
// unrealized column.
func (s *Service) fetchMarks(
	ctx context.Context,
	fills []domain.Trade,
	settlements []domain.Settlement,
	positions []domain.ExternalPosition,
) map[string]int64 {
	settled := make(map[string]bool, len(settlements))
	for _, st := range settlements {
		settled[st.Ticker] = true
	}

	seen := make(map[string]bool)
	var tickers []string
	for _, f := range fills {
		if !settled[f.Ticker] && !seen[f.Ticker] {
			seen[f.Ticker] = true
			tickers = append(tickers, f.Ticker)
		}
	}
	for _, p := range positions {
		if p.Quantity != 0 && !settled[p.Ticker] && !seen[p.Ticker] {
			seen[p.Ticker] = true
			tickers = append(tickers, p.Ticker)
		}
	}
	if len(tickers) == 0 {
		return nil
	}

	marks, err := s.client.FetchMarkPrices(ctx, tickers)
	if err != nil {
		slog.Warn("mark price fetch failed, skipping unrealized P&L", "err", err)
		return nil
	}
	return marks
}

// crossCheck compares our open quantities against the exchange's view and
// logs disagreements. Exchange positions are advisory: the discrepancy is
// surfaced, our computation stands.
func (s *Service) crossCheck(summary *domain.PnLSummary, positions []domain.ExternalPosition) {
	for _, p := range positions {
		cp, ok := summary.PerContract[p.Ticker]
		if !ok {
			continue
		}
		if cp.OpenQuantity != p.Quantity {
			slog.Warn("open quantity disagrees with exchange",
				"ticker", p.Ticker,
				"computed", cp.OpenQuantity,
				"reported", p.Quantity,
			)
		}
	}
}
