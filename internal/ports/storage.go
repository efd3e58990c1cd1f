package ports

import (
	"context"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
)

// Storage persists synced exchange facts and computed summaries. Loads must
// return trades in chronological order with a stable arrival-order tie-break;
// the engine's FIFO matching depends on it.
type Storage interface {
	SaveFills(ctx context.Context, fills []domain.Trade) error
	SaveSettlements(ctx context.Context, settlements []domain.Settlement) error
	SavePositions(ctx context.Context, positions []domain.ExternalPosition) error
	RecordSyncRun(ctx context.Context, run domain.SyncRun) error

	LoadFills(ctx context.Context) ([]domain.Trade, error)
	LoadSettlements(ctx context.Context) ([]domain.Settlement, error)
	LoadPositions(ctx context.Context) ([]domain.ExternalPosition, error)

	// SaveSummary records a computed summary under a run id so report
	// history survives recomputation.
	SaveSummary(ctx context.Context, runID string, summary *domain.PnLSummary) error

	Close() error
}
